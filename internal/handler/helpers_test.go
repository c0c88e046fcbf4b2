package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func withBody(c *gin.Context, body io.Reader, contentType string) {
	c.Request.Body = io.NopCloser(body)
	c.Request.Header.Set("Content-Type", contentType)
}

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}

type filePart struct {
	field string
	name  string
	data  []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}
