package configsecret

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestK8sAccessor_FlattensSecretDataByNameAndKey(t *testing.T) {
	clientset := fake.NewSimpleClientset(&corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "db-credentials", Namespace: "default"},
		Data:       map[string][]byte{"password": []byte("s3cr3t")},
	})

	a, err := newK8sAccessorFromClientset(clientset, DefaultK8sOptions("default"))
	require.NoError(t, err)

	v, ok := a.GetSecret("db-credentials/password")
	require.True(t, ok)
	assert.Equal(t, "s3cr3t", v)
}

func TestK8sAccessor_RefreshPicksUpNewSecret(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	a, err := newK8sAccessorFromClientset(clientset, DefaultK8sOptions("default"))
	require.NoError(t, err)
	assert.False(t, a.Exists("added/key"))

	_, err = clientset.CoreV1().Secrets("default").Create(context.Background(), &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "added", Namespace: "default"},
		StringData: map[string]string{"key": "value"},
	}, metav1.CreateOptions{})
	require.NoError(t, err)

	require.NoError(t, a.Refresh(context.Background()))
	assert.True(t, a.Exists("added/key"))
}
