package services

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelogue/guideapi/internal/models"
)

func validCover() *Upload {
	return &Upload{Filename: "cover.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")}
}

func validPdf() *Upload {
	return &Upload{Filename: "guide.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7")}
}

func TestCreateGuideDerivesUniqueSlugs(t *testing.T) {
	db := setupTestDB(t)
	files := &FileStore{Root: t.TempDir()}
	author := createTestUser(t, db, "editor@example.com", models.RoleUploader)

	in := GuideInput{Title: "Winter in Prague", CurrentPrice: 400, IsPublished: true}

	first, err := CreateGuide(db, files, in, validCover(), validPdf(), author.UserID)
	require.NoError(t, err)
	assert.Equal(t, "winter-in-prague", first.Slug)

	second, err := CreateGuide(db, files, in, validCover(), validPdf(), author.UserID)
	require.NoError(t, err)
	assert.Equal(t, "winter-in-prague-1", second.Slug)

	third, err := CreateGuide(db, files, in, validCover(), validPdf(), author.UserID)
	require.NoError(t, err)
	assert.Equal(t, "winter-in-prague-2", third.Slug)

	// Files landed under the store root
	_, err = os.Stat(files.FullPath(first.CoverImagePath))
	assert.NoError(t, err)
	_, err = os.Stat(files.FullPath(first.PdfPath))
	assert.NoError(t, err)
}

func TestCreateGuideRejectsBadUploads(t *testing.T) {
	db := setupTestDB(t)
	files := &FileStore{Root: t.TempDir()}
	author := createTestUser(t, db, "editor@example.com", models.RoleUploader)
	in := GuideInput{Title: "Bad Uploads"}

	badCover := &Upload{Filename: "cover.gif", ContentType: "image/gif", Data: []byte("gif")}
	_, err := CreateGuide(db, files, in, badCover, validPdf(), author.UserID)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "cover")

	badPdf := &Upload{Filename: "guide.pdf", ContentType: "text/plain", Data: []byte("nope")}
	_, err = CreateGuide(db, files, in, validCover(), badPdf, author.UserID)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "pdf")
}

func TestUpdateGuideReplacesFilesAndSlug(t *testing.T) {
	db := setupTestDB(t)
	files := &FileStore{Root: t.TempDir()}
	author := createTestUser(t, db, "editor@example.com", models.RoleUploader)

	created, err := CreateGuide(db, files,
		GuideInput{Title: "Original Title", IsPublished: true},
		validCover(), validPdf(), author.UserID)
	require.NoError(t, err)
	oldCover := created.CoverImagePath

	updated, err := UpdateGuide(db, files, created.GuideID,
		GuideInput{Title: "Renamed Title", CurrentPrice: 250, IsPublished: true},
		validCover(), nil)
	require.NoError(t, err)

	assert.Equal(t, "renamed-title", updated.Slug)
	assert.Equal(t, int64(250), updated.CurrentPrice)
	assert.NotNil(t, updated.UpdatedAt)
	assert.NotEqual(t, oldCover, updated.CoverImagePath)
	_, err = os.Stat(files.FullPath(oldCover))
	assert.True(t, os.IsNotExist(err), "old cover removed after replacement")

	// PDF untouched when no new upload supplied
	assert.Equal(t, created.PdfPath, updated.PdfPath)
}

func TestUpdateGuideKeepsSlugWhenNewOneTaken(t *testing.T) {
	db := setupTestDB(t)
	files := &FileStore{Root: t.TempDir()}
	author := createTestUser(t, db, "editor@example.com", models.RoleUploader)

	_, err := CreateGuide(db, files, GuideInput{Title: "Occupied"}, validCover(), validPdf(), author.UserID)
	require.NoError(t, err)
	other, err := CreateGuide(db, files, GuideInput{Title: "Movable"}, validCover(), validPdf(), author.UserID)
	require.NoError(t, err)

	updated, err := UpdateGuide(db, files, other.GuideID,
		GuideInput{Title: "Occupied"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "movable", updated.Slug, "slug keeps its old value when the new one is taken")
	assert.Equal(t, "Occupied", updated.Title)
}

func TestDeleteGuideRemovesFiles(t *testing.T) {
	db := setupTestDB(t)
	files := &FileStore{Root: t.TempDir()}
	author := createTestUser(t, db, "editor@example.com", models.RoleUploader)

	created, err := CreateGuide(db, files, GuideInput{Title: "Doomed"}, validCover(), validPdf(), author.UserID)
	require.NoError(t, err)

	require.NoError(t, DeleteGuide(db, files, created.GuideID))

	_, err = GetGuideByID(db, created.GuideID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = os.Stat(files.FullPath(created.PdfPath))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, DeleteGuide(db, files, created.GuideID), ErrNotFound)
}

func TestTogglePublish(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "editor@example.com", models.RoleUploader)
	guide := createTestGuide(t, db, "Flip Me", 0, false, nil, author.UserID)

	published, err := TogglePublish(db, guide.GuideID)
	require.NoError(t, err)
	assert.True(t, published)

	published, err = TogglePublish(db, guide.GuideID)
	require.NoError(t, err)
	assert.False(t, published)

	_, err = TogglePublish(db, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuideInputValidate(t *testing.T) {
	neg := int64(-5)

	assert.Nil(t, (&GuideInput{Title: "Fine"}).Validate())

	fields := (&GuideInput{Title: "", CurrentPrice: -1, OldPrice: &neg}).Validate()
	require.NotNil(t, fields)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "currentPrice")
	assert.Contains(t, fields, "oldPrice")
}
