package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/classcollab/internal/model"
	"anoa.com/classcollab/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	svc      ChatService
	users    *fakeUserRepo
	classes  *fakeClassRepo
	groups   *fakeGroupRepo
	messages *fakeMessageRepo

	teacher  *model.User
	leader   *model.User
	member   *model.User
	outsider *model.User
	classID  uuid.UUID
	groupID  uuid.UUID
}

func setupChatService(t *testing.T) *chatFixture {
	t.Helper()
	ctx := context.Background()
	users := newFakeUserRepo()
	classes := newFakeClassRepo(users)
	groups := newFakeGroupRepo(users)
	messages := newFakeMessageRepo(users)

	f := &chatFixture{
		// nil redis: persistence still works, fan-out and rate limit are off.
		svc:      NewChatService(messages, groups, classes, users, nil, time.Second),
		users:    users,
		classes:  classes,
		groups:   groups,
		messages: messages,
	}

	f.teacher = &model.User{Name: "Bu Eka", Email: "eka@example.com", IsTeacher: true}
	require.NoError(t, users.Create(ctx, f.teacher))
	f.leader = &model.User{Name: "Gita", Email: "gita@example.com"}
	require.NoError(t, users.Create(ctx, f.leader))
	f.member = &model.User{Name: "Hadi", Email: "hadi@example.com"}
	require.NoError(t, users.Create(ctx, f.member))
	f.outsider = &model.User{Name: "Intan", Email: "intan@example.com"}
	require.NoError(t, users.Create(ctx, f.outsider))

	class := &model.Class{Name: "Biologi X", Code: "BIO10", TeacherID: f.teacher.ID}
	require.NoError(t, classes.Create(ctx, class))
	f.classID = class.ID
	_, err := classes.AddStudent(ctx, class.ID, f.member.ID)
	require.NoError(t, err)

	group := &model.Group{Name: "Kelompok 1", LeaderID: f.leader.ID}
	require.NoError(t, groups.Create(ctx, group, []uuid.UUID{f.leader.ID, f.member.ID}))
	f.groupID = group.ID
	return f
}

func TestSendToGroupMembersOnly(t *testing.T) {
	f := setupChatService(t)
	ctx := context.Background()

	_, err := f.svc.SendToGroup(ctx, f.outsider.ID, f.groupID, "halo")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	msg, err := f.svc.SendToGroup(ctx, f.member.ID, f.groupID, "halo semua")
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, msg.Sender.ID)
	assert.Equal(t, "halo semua", msg.Body)
}

func TestSendToClassTeacherOnly(t *testing.T) {
	f := setupChatService(t)
	ctx := context.Background()

	// Broadcast-only: even enrolled students cannot write.
	_, err := f.svc.SendToClass(ctx, f.member.ID, f.classID, "halo")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	sent, err := f.svc.SendToClass(ctx, f.teacher.ID, f.classID, "pengumuman")
	require.NoError(t, err)

	// Enrolled students can read it.
	msgs, err := f.svc.FetchClass(ctx, f.member.ID, f.classID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, sent.ID, msgs[0].ID)

	// Outsiders cannot.
	_, err = f.svc.FetchClass(ctx, f.outsider.ID, f.classID, 0)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.SendToClass(ctx, f.teacher.ID, uuid.New(), "halo")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSendPrivateValidation(t *testing.T) {
	f := setupChatService(t)
	ctx := context.Background()

	_, err := f.svc.SendPrivate(ctx, f.member.ID, f.member.ID, "halo")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.SendPrivate(ctx, f.member.ID, uuid.New(), "halo")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	msg, err := f.svc.SendPrivate(ctx, f.member.ID, f.leader.ID, "halo kak")
	require.NoError(t, err)
	assert.Equal(t, "halo kak", msg.Body)
}

func TestFetchGroupChronologicalAndTruncated(t *testing.T) {
	f := setupChatService(t)
	ctx := context.Background()

	for _, body := range []string{"satu", "dua", "tiga"} {
		_, err := f.svc.SendToGroup(ctx, f.member.ID, f.groupID, body)
		require.NoError(t, err)
	}

	// Outsiders cannot read.
	_, err := f.svc.FetchGroup(ctx, f.outsider.ID, f.groupID, 0)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	all, err := f.svc.FetchGroup(ctx, f.member.ID, f.groupID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "satu", all[0].Body)
	assert.Equal(t, "tiga", all[2].Body)
	assert.Less(t, all[0].Seq, all[1].Seq)

	// Truncation drops the oldest messages, never the newest.
	page, err := f.svc.FetchGroup(ctx, f.member.ID, f.groupID, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "dua", page[0].Body)
	assert.Equal(t, "tiga", page[1].Body)
}

func TestFetchPrivateBothDirections(t *testing.T) {
	f := setupChatService(t)
	ctx := context.Background()

	_, err := f.svc.SendPrivate(ctx, f.member.ID, f.leader.ID, "halo")
	require.NoError(t, err)
	_, err = f.svc.SendPrivate(ctx, f.leader.ID, f.member.ID, "halo juga")
	require.NoError(t, err)

	msgs, err := f.svc.FetchPrivate(ctx, f.member.ID, f.leader.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "halo", msgs[0].Body)
	assert.Equal(t, "halo juga", msgs[1].Body)
}

func TestRecentChatsMostRecentFirst(t *testing.T) {
	f := setupChatService(t)
	ctx := context.Background()

	_, err := f.svc.SendPrivate(ctx, f.member.ID, f.leader.ID, "pertama")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = f.svc.SendPrivate(ctx, f.member.ID, f.teacher.ID, "kedua")
	require.NoError(t, err)

	chats, err := f.svc.RecentChats(ctx, f.member.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, f.teacher.ID, chats[0].User.ID)
	assert.Equal(t, f.leader.ID, chats[1].User.ID)
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, "kedua", chats[0].LastMessage.Body)
}

func TestCanAccessRoom(t *testing.T) {
	f := setupChatService(t)
	ctx := context.Background()

	ok, err := f.svc.CanAccessRoom(ctx, f.member.ID, RoomGroup, f.groupID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanAccessRoom(ctx, f.outsider.ID, RoomGroup, f.groupID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.CanAccessRoom(ctx, f.outsider.ID, RoomClass, f.classID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.CanAccessRoom(ctx, f.teacher.ID, RoomClass, f.classID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanAccessRoom(ctx, f.member.ID, RoomPrivate, f.member.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanAccessRoom(ctx, f.member.ID, "unknown", f.member.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
