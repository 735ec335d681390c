package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfscore/shelfscore-server/internal/service"
)

func TestCreateBook_RequiresAuth(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/books", "", service.CreateBookRequest{
		Title:         "The Hobbit",
		Author:        "J.R.R. Tolkien",
		Description:   "A hobbit leaves home and finds a ring.",
		Genre:         "Fantasy",
		PublishedYear: 1937,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBook_Success(t *testing.T) {
	server := setupTestServer(t)
	token, userID := signupUser(t, server, "reader@example.com", "Avid Reader")

	book := addBook(t, server, token, "The Hobbit")

	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, "the-hobbit", book.Slug)
	assert.Equal(t, userID, book.AddedBy)
	assert.Equal(t, 0.0, book.AverageRating)
	assert.Equal(t, 0, book.ReviewCount)
	assert.Nil(t, book.Thumbnail)
}

func TestCreateBook_InvalidGenre(t *testing.T) {
	server := setupTestServer(t)
	token, _ := signupUser(t, server, "reader@example.com", "Avid Reader")

	w := doJSON(t, server, http.MethodPost, "/api/books", token, service.CreateBookRequest{
		Title:         "Cooking for Hobbits",
		Author:        "B. Baggins",
		Description:   "Seven meals a day, every day.",
		Genre:         "Cooking",
		PublishedYear: 2001,
	})
	require.Equal(t, http.StatusBadRequest, w.Code, "body: %s", w.Body.String())

	env := decodeEnvelope[struct{}](t, w)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestGetBook_BySlugAndID(t *testing.T) {
	server := setupTestServer(t)
	token, _ := signupUser(t, server, "reader@example.com", "Avid Reader")
	created := addBook(t, server, token, "The Hobbit")

	for _, key := range []string{created.Slug, created.ID} {
		w := doJSON(t, server, http.MethodGet, "/api/books/"+key, "", nil)
		require.Equal(t, http.StatusOK, w.Code, "lookup by %q", key)

		env := decodeEnvelope[BookResponse](t, w)
		assert.Equal(t, created.ID, env.Data.ID)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/books/nothing-here", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBooks_PaginationAndFilter(t *testing.T) {
	server := setupTestServer(t)
	token, _ := signupUser(t, server, "reader@example.com", "Avid Reader")

	addBook(t, server, token, "The Hobbit")
	addBook(t, server, token, "The Silmarillion")
	addBook(t, server, token, "The Fellowship of the Ring")

	w := doJSON(t, server, http.MethodGet, "/api/books?page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	env := decodeEnvelope[ListBooksResponse](t, w)
	assert.Len(t, env.Data.Books, 2)
	assert.Equal(t, 3, env.Data.Pagination.Total)
	assert.Equal(t, 2, env.Data.Pagination.Pages)
	assert.True(t, env.Data.Pagination.HasMore)

	w = doJSON(t, server, http.MethodGet, "/api/books?genre=Fantasy", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope[ListBooksResponse](t, w)
	assert.Equal(t, 3, env.Data.Pagination.Total)

	w = doJSON(t, server, http.MethodGet, "/api/books?search=silmarillion", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope[ListBooksResponse](t, w)
	require.Len(t, env.Data.Books, 1)
	assert.Equal(t, "The Silmarillion", env.Data.Books[0].Title)
}

func TestListBooks_SortByTitle(t *testing.T) {
	server := setupTestServer(t)
	token, _ := signupUser(t, server, "reader@example.com", "Avid Reader")

	addBook(t, server, token, "The Silmarillion")
	addBook(t, server, token, "The Hobbit")

	w := doJSON(t, server, http.MethodGet, "/api/books?sort=title", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[ListBooksResponse](t, w)
	require.Len(t, env.Data.Books, 2)
	assert.Equal(t, "The Hobbit", env.Data.Books[0].Title)
	assert.Equal(t, "The Silmarillion", env.Data.Books[1].Title)
}

func TestUpdateBook_OnlyOwner(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := signupUser(t, server, "owner@example.com", "Owner")
	otherToken, _ := signupUser(t, server, "other@example.com", "Other")
	book := addBook(t, server, ownerToken, "The Hobbit")

	newTitle := "The Annotated Hobbit"

	w := doJSON(t, server, http.MethodPut, "/api/books/"+book.ID, otherToken, service.UpdateBookRequest{
		Title: &newTitle,
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, server, http.MethodPut, "/api/books/"+book.ID, ownerToken, service.UpdateBookRequest{
		Title: &newTitle,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	env := decodeEnvelope[BookResponse](t, w)
	assert.Equal(t, "The Annotated Hobbit", env.Data.Title)
	assert.Equal(t, "the-annotated-hobbit", env.Data.Slug)
}

func TestDeleteBook(t *testing.T) {
	server := setupTestServer(t)
	token, _ := signupUser(t, server, "reader@example.com", "Avid Reader")
	book := addBook(t, server, token, "The Hobbit")

	w := doJSON(t, server, http.MethodDelete, "/api/books/"+book.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = doJSON(t, server, http.MethodGet, "/api/books/"+book.ID, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

// encodeTestPNG renders a small image for upload tests.
func encodeTestPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uploadThumbnail sends a multipart PUT with the given file bytes.
func uploadThumbnail(t *testing.T, server *Server, token, bookID string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "cover.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/books/"+bookID+"/thumbnail", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestUploadThumbnail(t *testing.T) {
	server := setupTestServer(t)
	token, _ := signupUser(t, server, "reader@example.com", "Avid Reader")
	book := addBook(t, server, token, "The Hobbit")

	w := uploadThumbnail(t, server, token, book.ID, encodeTestPNG(t))
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	env := decodeEnvelope[BookResponse](t, w)
	require.NotNil(t, env.Data.Thumbnail)
	assert.Equal(t, "/api/thumbnails/"+book.ID, env.Data.Thumbnail.URL)
	assert.Equal(t, "image/png", env.Data.Thumbnail.Format)
	assert.NotEmpty(t, env.Data.Thumbnail.BlurHash)

	// The stored image comes back byte for byte.
	req := httptest.NewRequest(http.MethodGet, "/api/thumbnails/"+book.ID, http.NoBody)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, encodeTestPNG(t), rec.Body.Bytes())
}

func TestUploadThumbnail_RequiresAuth(t *testing.T) {
	server := setupTestServer(t)
	token, _ := signupUser(t, server, "reader@example.com", "Avid Reader")
	book := addBook(t, server, token, "The Hobbit")

	w := uploadThumbnail(t, server, "", book.ID, encodeTestPNG(t))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadThumbnail_RejectsNonImage(t *testing.T) {
	server := setupTestServer(t)
	token, _ := signupUser(t, server, "reader@example.com", "Avid Reader")
	book := addBook(t, server, token, "The Hobbit")

	w := uploadThumbnail(t, server, token, book.ID, []byte("definitely not an image"))
	require.Equal(t, http.StatusBadRequest, w.Code, "body: %s", w.Body.String())
}

func TestGetThumbnail_None(t *testing.T) {
	server := setupTestServer(t)
	token, _ := signupUser(t, server, "reader@example.com", "Avid Reader")
	book := addBook(t, server, token, "The Hobbit")

	req := httptest.NewRequest(http.MethodGet, "/api/thumbnails/"+book.ID, http.NoBody)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
