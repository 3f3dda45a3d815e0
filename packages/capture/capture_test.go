package capture

import (
	"testing"

	"github.com/abdul-hamid-achik/giraftest/packages/fixture"
	"github.com/abdul-hamid-achik/giraftest/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEnvelope(t *testing.T, body string) *http.Envelope {
	t.Helper()
	resp := &http.Response{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}
	env, err := resp.Envelope()
	require.NoError(t, err)
	return env
}

func TestApply(t *testing.T) {
	env := createEnvelope(t, `{"success":true,"errorKey":"NoError","data":{"id":42,"name":"Template1","score":1.5}}`)
	store := fixture.NewStore()

	err := Apply(store, env,
		Body("templateId", "data.id"),
		Body("name", "data.name"),
		Body("score", "data.score"),
	)
	require.NoError(t, err)

	id, ok := store.Int("templateId")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "Template1", store.String("name"))
	v, _ := store.Get("score")
	assert.Equal(t, 1.5, v)
}

func TestApply_Token(t *testing.T) {
	env := createEnvelope(t, `{"success":true,"errorKey":"NoError","data":"tok-123"}`)
	store := fixture.NewStore()

	require.NoError(t, Apply(store, env, Body("guardianToken", "data")))
	assert.Equal(t, "tok-123", store.String("guardianToken"))
}

func TestApply_Missing(t *testing.T) {
	env := createEnvelope(t, `{"success":false,"errorKey":"InvalidCredentials","data":null}`)
	store := fixture.NewStore()

	err := Apply(store, env, Body("token", "data"), Body("id", "data.id"), Body("key", "errorKey"))
	require.Error(t, err)
	assert.Equal(t, "capture: no value for token, id", err.Error())
	assert.False(t, store.Has("token"))
	assert.False(t, store.Has("id"))
	assert.Equal(t, "InvalidCredentials", store.String("key"))
}

func TestApply_NilEnvelope(t *testing.T) {
	store := fixture.NewStore()
	err := Apply(store, nil, Body("templateId", "data.id"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "templateId")
}
