package service

import (
	"context"
	"strings"
	"testing"

	"anoa.com/classcollab/internal/dto"
	"anoa.com/classcollab/internal/model"
	"anoa.com/classcollab/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClassService(t *testing.T) (ClassService, *fakeUserRepo, *model.User, *model.User) {
	t.Helper()
	users := newFakeUserRepo()
	classes := newFakeClassRepo(users)
	svc := NewClassService(classes, users, &fakeFileStorage{}, "class-files")

	teacher := &model.User{Name: "Bu Eka", Email: "eka@example.com", IsTeacher: true}
	require.NoError(t, users.Create(context.Background(), teacher))
	student := &model.User{Name: "Fajar", Email: "fajar@example.com"}
	require.NoError(t, users.Create(context.Background(), student))

	return svc, users, teacher, student
}

func TestCreateClassTeacherOnly(t *testing.T) {
	svc, _, teacher, student := setupClassService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, student.ID, dto.CreateClassRequest{Name: "Kimia XI", Code: "KIM11"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	class, err := svc.Create(ctx, teacher.ID, dto.CreateClassRequest{Name: "Kimia XI", Code: "KIM11"})
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, class.TeacherID)

	// Join codes are unique.
	_, err = svc.Create(ctx, teacher.ID, dto.CreateClassRequest{Name: "Kimia XII", Code: "KIM11"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestJoinClassByCode(t *testing.T) {
	svc, _, teacher, student := setupClassService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, teacher.ID, dto.CreateClassRequest{Name: "Kimia XI", Code: "KIM11"})
	require.NoError(t, err)

	_, err = svc.JoinByCode(ctx, student.ID, "WRONG")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	class, err := svc.JoinByCode(ctx, student.ID, "KIM11")
	require.NoError(t, err)
	assert.Equal(t, created.ID, class.ID)

	// Joining again is a no-op, not an error.
	_, err = svc.JoinByCode(ctx, student.ID, "KIM11")
	assert.NoError(t, err)

	enrolled, err := svc.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, created.ID, enrolled[0].ID)
}

func TestRemoveStudentTeacherOnly(t *testing.T) {
	svc, _, teacher, student := setupClassService(t)
	ctx := context.Background()

	class, err := svc.Create(ctx, teacher.ID, dto.CreateClassRequest{Name: "Kimia XI", Code: "KIM11"})
	require.NoError(t, err)
	_, err = svc.JoinByCode(ctx, student.ID, "KIM11")
	require.NoError(t, err)

	err = svc.RemoveStudent(ctx, class.ID, student.ID, student.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, svc.RemoveStudent(ctx, class.ID, teacher.ID, student.ID))

	enrolled, err := svc.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, enrolled)
}

func TestClassFilesTeacherManaged(t *testing.T) {
	svc, _, teacher, student := setupClassService(t)
	ctx := context.Background()

	class, err := svc.Create(ctx, teacher.ID, dto.CreateClassRequest{Name: "Kimia XI", Code: "KIM11"})
	require.NoError(t, err)
	_, err = svc.JoinByCode(ctx, student.ID, "KIM11")
	require.NoError(t, err)

	// Only the teacher shares material with the class.
	_, err = svc.UploadFile(ctx, class.ID, student.ID, "catatan.pdf", strings.NewReader("isi"))
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	first, err := svc.UploadFile(ctx, class.ID, teacher.ID, "modul-1.pdf", strings.NewReader("isi"))
	require.NoError(t, err)
	assert.NotEmpty(t, first.FileURL)
	second, err := svc.UploadFile(ctx, class.ID, teacher.ID, "modul-2.pdf", strings.NewReader("isi"))
	require.NoError(t, err)

	// Students read the shared files, newest first.
	files, err := svc.ListFiles(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, second.ID, files[0].ID)
	assert.Equal(t, teacher.ID, files[0].UploaderID)

	err = svc.DeleteFile(ctx, class.ID, student.ID, first.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, svc.DeleteFile(ctx, class.ID, teacher.ID, first.ID))
	err = svc.DeleteFile(ctx, class.ID, teacher.ID, first.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = svc.DeleteFile(ctx, class.ID, teacher.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	files, err = svc.ListFiles(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "modul-2.pdf", files[0].FileName)
}
