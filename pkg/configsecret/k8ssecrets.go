package configsecret

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// K8sOptions configures the k8ssecrets Accessor.
type K8sOptions struct {
	Namespace     string
	LabelSelector string
	Timeout       time.Duration
	Logger        *slog.Logger
}

// DefaultK8sOptions returns sane defaults for namespace.
func DefaultK8sOptions(namespace string) K8sOptions {
	return K8sOptions{Namespace: namespace, Timeout: 30 * time.Second, Logger: slog.Default()}
}

// K8sAccessor implements Accessor by reading Kubernetes Secret objects
// in a namespace, refreshed on demand. Grounded on the teacher's
// internal/infrastructure/k8s.K8sClient (in-cluster config,
// ListSecrets/GetSecret shape), narrowed from a general K8s client
// wrapper down to the read-only secrets contract this package exposes.
type K8sAccessor struct {
	clientset kubernetes.Interface
	opts      K8sOptions

	mu        sync.Mutex
	values    map[string]string
	accessN   map[string]int64
	lastFetch time.Time
}

// NewK8sAccessor builds an Accessor against the in-cluster K8s API.
func NewK8sAccessor(opts K8sOptions) (*K8sAccessor, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	restConfig, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("configsecret: failed to load in-cluster config: %w", err)
	}
	restConfig.Timeout = opts.Timeout

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("configsecret: failed to create k8s clientset: %w", err)
	}

	a := &K8sAccessor{clientset: clientset, opts: opts, accessN: map[string]int64{}}
	if err := a.refresh(context.Background()); err != nil {
		return nil, err
	}
	return a, nil
}

// newK8sAccessorFromClientset is the test seam: it bypasses in-cluster
// discovery and accepts a fake clientset directly.
func newK8sAccessorFromClientset(clientset kubernetes.Interface, opts K8sOptions) (*K8sAccessor, error) {
	a := &K8sAccessor{clientset: clientset, opts: opts, accessN: map[string]int64{}}
	if a.opts.Logger == nil {
		a.opts.Logger = slog.Default()
	}
	if err := a.refresh(context.Background()); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *K8sAccessor) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	list, err := a.clientset.CoreV1().Secrets(a.opts.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: a.opts.LabelSelector,
		Limit:         1000,
	})
	if err != nil {
		a.opts.Logger.Error("failed to list k8s secrets", "namespace", a.opts.Namespace, "error", err)
		return fmt.Errorf("configsecret: failed to list secrets: %w", err)
	}

	values := map[string]string{}
	for _, secret := range list.Items {
		flattenSecret(secret, values)
	}

	a.mu.Lock()
	a.values = values
	a.lastFetch = time.Now()
	a.mu.Unlock()
	return nil
}

func flattenSecret(secret corev1.Secret, out map[string]string) {
	for k, v := range secret.Data {
		out[secret.Name+"/"+k] = string(v)
	}
	for k, v := range secret.StringData {
		out[secret.Name+"/"+k] = v
	}
}

// Refresh re-lists secrets from the cluster, picking up additions,
// removals, and rotated values.
func (a *K8sAccessor) Refresh(ctx context.Context) error {
	return a.refresh(ctx)
}

func (a *K8sAccessor) GetSecret(name string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.values[name]
	if ok {
		a.accessN[name]++
	}
	return v, ok
}

func (a *K8sAccessor) ListSecretNames() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.values))
	for k := range a.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (a *K8sAccessor) Exists(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.values[name]
	return ok
}
