package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galaktikon/trust-cart/internal/models"
)

type itemResponse struct {
	Product models.Product `json:"product"`
	Created bool           `json:"created"`
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, file []byte, userID string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create_item", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok-"+userID)
	return req
}

func TestCreateItemHandler(t *testing.T) {
	env := setupRouter(t, nil)
	register(t, env.router, "m1", "Josiah James", models.RoleAdmin)
	w := performRequest(env.router, http.MethodPost, "/login", nil, "m1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	fields := map[string]string{
		"user_id":     "m1",
		"title":       "Widget",
		"price":       "9.99",
		"description": "A fine widget",
		"filePath":    "images/widget.png",
	}

	t.Run("creates product with image", func(t *testing.T) {
		w := serve(env.router, multipartRequest(t, fields, "widget.png", []byte("png-bytes"), "m1"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp itemResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Created)
		assert.Equal(t, "Widget", resp.Product.Name)
		assert.Equal(t, models.DefaultStock, resp.Product.Stock)
		assert.True(t, decimal.RequireFromString("9.99").Equal(resp.Product.Price))

		key := resp.Product.StoreID + "/images/widget.png"
		assert.Equal(t, "https://cdn.test/"+key, resp.Product.ImageURL)
		assert.Equal(t, []byte("png-bytes"), env.blobs.objects[key])
	})

	t.Run("second create keeps original", func(t *testing.T) {
		again := map[string]string{"title": "Widget", "price": "12.50", "description": "changed"}
		w := serve(env.router, multipartRequest(t, again, "other.png", []byte("other"), "m1"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp itemResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Created)
		assert.True(t, decimal.RequireFromString("9.99").Equal(resp.Product.Price))
		assert.Equal(t, "A fine widget", resp.Product.Description)
		assert.Len(t, env.blobs.objects, 1)
	})

	t.Run("without image", func(t *testing.T) {
		w := serve(env.router, multipartRequest(t, map[string]string{"title": "Lamp", "price": "4.25"}, "", nil, "m1"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"image_url":""`)
	})

	t.Run("bad price", func(t *testing.T) {
		w := serve(env.router, multipartRequest(t, map[string]string{"title": "Lamp", "price": "cheap"}, "", nil, "m1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"price must be a number"}`, w.Body.String())

		w = serve(env.router, multipartRequest(t, map[string]string{"title": "Rug", "price": "0"}, "", nil, "m1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		w := serve(env.router, multipartRequest(t, map[string]string{"price": "1"}, "", nil, "m1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("body user must match token", func(t *testing.T) {
		w := serve(env.router, multipartRequest(t, fields, "widget.png", []byte("png-bytes"), "c1"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCreateItemHandlerRejectsOversizedBody(t *testing.T) {
	env := setupRouter(t, nil)
	register(t, env.router, "m1", "Josiah James", models.RoleAdmin)
	require.Equal(t, http.StatusOK, performRequest(env.router, http.MethodPost, "/login", nil, "m1").Code)

	huge := bytes.Repeat([]byte{0xAB}, 12<<20)
	w := serve(env.router, multipartRequest(t, map[string]string{"title": "Poster", "price": "3.00"}, "poster.png", huge, "m1"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"file too large"}`, w.Body.String())

	var count int64
	env.db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, env.blobs.objects)
}

func TestCreateItemHandlerWithoutStore(t *testing.T) {
	env := setupRouter(t, nil)
	register(t, env.router, "m2", "Casey", models.RoleAdmin)

	w := serve(env.router, multipartRequest(t, map[string]string{"title": "Widget", "price": "1.00"}, "", nil, "m2"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
