package apiclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermarket-console/internal/infrastructure/apiclient"
)

func TestNormalize_ExitoJSON(t *testing.T) {
	p, err := apiclient.Normalize(200, "OK", []byte(`{"id":"c-1","name":"Frutas"}`))
	require.NoError(t, err)
	assert.True(t, p.IsJSON())
	assert.False(t, p.IsNull())

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, p.Decode(&out))
	assert.Equal(t, "Frutas", out.Name)
}

func TestNormalize_ExitoTextoPlano(t *testing.T) {
	p, err := apiclient.Normalize(200, "OK", []byte("eliminado"))
	require.NoError(t, err)
	assert.False(t, p.IsJSON())
	assert.False(t, p.IsNull())
	assert.Equal(t, "eliminado", p.Text())

	var v map[string]any
	assert.Error(t, p.Decode(&v), "decodificar texto plano como JSON debe fallar")
}

func TestNormalize_ExitoSinCuerpo(t *testing.T) {
	for _, body := range [][]byte{nil, []byte(""), []byte("  \n"), []byte("null")} {
		p, err := apiclient.Normalize(204, "No Content", body)
		require.NoError(t, err)
		assert.True(t, p.IsNull(), "cuerpo %q", body)

		v := map[string]any{"intacto": true}
		require.NoError(t, p.Decode(&v))
		assert.Equal(t, true, v["intacto"])
	}
}

func TestNormalize_ClasificaFallos(t *testing.T) {
	cases := []struct {
		status int
		text   string
		body   string
		kind   apiclient.Kind
		msg    string
	}{
		{400, "Bad Request", `{"message":"Nombre inválido"}`, apiclient.KindBadRequest, "Nombre inválido"},
		{400, "Bad Request", `{"detail":"Campo faltante"}`, apiclient.KindBadRequest, "Campo faltante"},
		{400, "Bad Request", ``, apiclient.KindBadRequest, apiclient.MsgBadRequest},
		{401, "Unauthorized", `{"message":"token vencido"}`, apiclient.KindUnauthenticated, apiclient.MsgSessionExpired},
		{403, "Forbidden", `{"message":"x"}`, apiclient.KindForbidden, apiclient.MsgForbidden},
		{404, "Not Found", `<html>404</html>`, apiclient.KindNotFound, apiclient.MsgNotFound},
		{409, "Conflict", `{"message":"Ya existe"}`, apiclient.KindConflict, "Ya existe"},
		{409, "Conflict", `texto`, apiclient.KindConflict, apiclient.MsgConflict},
		{500, "Internal Server Error", `{"message":"panic"}`, apiclient.KindServer, apiclient.MsgServer},
		{502, "Bad Gateway", ``, apiclient.KindUnexpected, "Error 502: Bad Gateway"},
		{418, "", ``, apiclient.KindUnexpected, "Error 418: I'm a teapot"},
		{422, "Unprocessable Entity", `{"message":"precio inválido"}`, apiclient.KindUnexpected, "precio inválido"},
	}
	for _, tc := range cases {
		p, err := apiclient.Normalize(tc.status, tc.text, []byte(tc.body))
		assert.Nil(t, p)
		require.Error(t, err, "status %d", tc.status)

		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tc.kind, apiErr.Kind, "status %d", tc.status)
		assert.Equal(t, tc.status, apiErr.Status)
		assert.Equal(t, tc.msg, apiErr.Error(), "status %d", tc.status)
	}
}

func TestIsUnauthenticated(t *testing.T) {
	_, err := apiclient.Normalize(401, "Unauthorized", nil)
	assert.True(t, apiclient.IsUnauthenticated(err))

	_, err = apiclient.Normalize(403, "Forbidden", nil)
	assert.False(t, apiclient.IsUnauthenticated(err))
	assert.False(t, apiclient.IsUnauthenticated(apiclient.ErrNetwork))
}
