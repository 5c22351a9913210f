package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"anoa.com/classcollab/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They honor the same contracts as the GORM
// implementations (not-found maps to gorm.ErrRecordNotFound, adds report
// whether a row was inserted) so services under test cannot tell them apart.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*model.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			found = append(found, user)
		}
	}
	return found, nil
}

func (r *fakeUserRepo) FindBySRNs(ctx context.Context, srns []string) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*model.User
	for _, srn := range srns {
		for _, user := range r.users {
			if user.SRN != nil && *user.SRN == srn {
				found = append(found, user)
			}
		}
	}
	return found, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	return all, nil
}

type fakeClassRepo struct {
	mu       sync.Mutex
	classes  map[uuid.UUID]*model.Class
	students map[uuid.UUID][]uuid.UUID
	files    []*model.ClassFile
	users    *fakeUserRepo
}

func newFakeClassRepo(users *fakeUserRepo) *fakeClassRepo {
	return &fakeClassRepo{
		classes:  make(map[uuid.UUID]*model.Class),
		students: make(map[uuid.UUID][]uuid.UUID),
		users:    users,
	}
}

func (r *fakeClassRepo) Create(ctx context.Context, class *model.Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if class.ID == uuid.Nil {
		class.ID = uuid.New()
	}
	r.classes[class.ID] = class
	return nil
}

func (r *fakeClassRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	class, ok := r.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *class
	out.Students = nil
	for _, studentID := range r.students[id] {
		entry := model.ClassStudent{ClassID: id, UserID: studentID}
		if user, ok := r.users.users[studentID]; ok {
			entry.User = *user
		}
		out.Students = append(out.Students, entry)
	}
	return &out, nil
}

func (r *fakeClassRepo) FindByCode(ctx context.Context, code string) (*model.Class, error) {
	r.mu.Lock()
	var found *model.Class
	for _, class := range r.classes {
		if class.Code == code {
			found = class
			break
		}
	}
	r.mu.Unlock()
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, found.ID)
}

func (r *fakeClassRepo) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var classes []*model.Class
	for _, class := range r.classes {
		if class.TeacherID == teacherID {
			classes = append(classes, class)
		}
	}
	return classes, nil
}

func (r *fakeClassRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var classes []*model.Class
	for classID, members := range r.students {
		for _, id := range members {
			if id == studentID {
				classes = append(classes, r.classes[classID])
				break
			}
		}
	}
	return classes, nil
}

func (r *fakeClassRepo) AddStudent(ctx context.Context, classID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[classID]; !ok {
		return false, gorm.ErrRecordNotFound
	}
	for _, id := range r.students[classID] {
		if id == userID {
			return false, nil
		}
	}
	r.students[classID] = append(r.students[classID], userID)
	return true, nil
}

func (r *fakeClassRepo) RemoveStudent(ctx context.Context, classID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.students[classID]
	for i, id := range members {
		if id == userID {
			r.students[classID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeClassRepo) AddFile(ctx context.Context, file *model.ClassFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}
	r.files = append(r.files, file)
	return nil
}

func (r *fakeClassRepo) ListFiles(ctx context.Context, classID uuid.UUID) ([]*model.ClassFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var files []*model.ClassFile
	for i := len(r.files) - 1; i >= 0; i-- {
		if r.files[i].ClassID == classID {
			out := *r.files[i]
			if user, ok := r.users.users[out.UploaderID]; ok {
				out.Uploader = *user
			}
			files = append(files, &out)
		}
	}
	return files, nil
}

func (r *fakeClassRepo) FindFile(ctx context.Context, fileID uuid.UUID) (*model.ClassFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, file := range r.files {
		if file.ID == fileID {
			out := *file
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeClassRepo) DeleteFile(ctx context.Context, fileID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, file := range r.files {
		if file.ID == fileID {
			r.files = append(r.files[:i], r.files[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeClassRepo) IsStudent(ctx context.Context, classID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.students[classID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeGroupRepo struct {
	mu           sync.Mutex
	groups       map[uuid.UUID]*model.Group
	members      map[uuid.UUID][]uuid.UUID
	joinRequests map[uuid.UUID][]uuid.UUID
	invitations  []*model.GroupInvitation
	users        *fakeUserRepo
}

func newFakeGroupRepo(users *fakeUserRepo) *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:       make(map[uuid.UUID]*model.Group),
		members:      make(map[uuid.UUID][]uuid.UUID),
		joinRequests: make(map[uuid.UUID][]uuid.UUID),
		users:        users,
	}
}

func (r *fakeGroupRepo) Create(ctx context.Context, group *model.Group, memberIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	r.groups[group.ID] = group
	r.members[group.ID] = append([]uuid.UUID(nil), memberIDs...)
	return nil
}

func (r *fakeGroupRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	out := *group
	if leader, ok := r.users.users[group.LeaderID]; ok {
		out.Leader = *leader
	}
	out.Members = nil
	for _, userID := range r.members[id] {
		entry := model.GroupMember{GroupID: id, UserID: userID}
		if user, ok := r.users.users[userID]; ok {
			entry.User = *user
		}
		out.Members = append(out.Members, entry)
	}
	out.JoinRequests = nil
	for _, userID := range r.joinRequests[id] {
		entry := model.GroupJoinRequest{GroupID: id, UserID: userID}
		if user, ok := r.users.users[userID]; ok {
			entry.User = *user
		}
		out.JoinRequests = append(out.JoinRequests, entry)
	}
	out.Invitations = nil
	for _, inv := range r.invitations {
		if inv.GroupID == id {
			entry := *inv
			if user, ok := r.users.users[inv.UserID]; ok {
				entry.User = *user
			}
			out.Invitations = append(out.Invitations, entry)
		}
	}
	return &out, nil
}

func (r *fakeGroupRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var groups []*model.Group
	for id, group := range r.groups {
		if group.LeaderID == userID {
			groups = append(groups, group)
			continue
		}
		for _, memberID := range r.members[id] {
			if memberID == userID {
				groups = append(groups, group)
				break
			}
		}
	}
	return groups, nil
}

func (r *fakeGroupRepo) ListByClass(ctx context.Context, classID uuid.UUID) ([]*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var groups []*model.Group
	for _, group := range r.groups {
		if group.ClassID != nil && *group.ClassID == classID {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

func (r *fakeGroupRepo) AddMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[groupID]; !ok {
		return false, gorm.ErrRecordNotFound
	}
	for _, id := range r.members[groupID] {
		if id == userID {
			return false, nil
		}
	}
	r.members[groupID] = append(r.members[groupID], userID)
	return true, nil
}

func (r *fakeGroupRepo) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.members[groupID]
	for i, id := range members {
		if id == userID {
			r.members[groupID] = append(members[:i], members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGroupRepo) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGroupRepo) AddJoinRequest(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.joinRequests[groupID] {
		if id == userID {
			return false, nil
		}
	}
	r.joinRequests[groupID] = append(r.joinRequests[groupID], userID)
	return true, nil
}

func (r *fakeGroupRepo) RemoveJoinRequest(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := r.joinRequests[groupID]
	for i, id := range requests {
		if id == userID {
			r.joinRequests[groupID] = append(requests[:i], requests[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGroupRepo) CreateInvitation(ctx context.Context, invitation *model.GroupInvitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if invitation.ID == uuid.Nil {
		invitation.ID = uuid.New()
	}
	if invitation.Status == "" {
		invitation.Status = model.InvitationPending
	}
	r.invitations = append(r.invitations, invitation)
	return nil
}

func (r *fakeGroupRepo) FindPendingInvitation(ctx context.Context, groupID, userID uuid.UUID) (*model.GroupInvitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.invitations) - 1; i >= 0; i-- {
		inv := r.invitations[i]
		if inv.GroupID == groupID && inv.UserID == userID && inv.Status == model.InvitationPending {
			out := *inv
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) ResolveInvitation(ctx context.Context, invitationID uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.ID == invitationID && inv.Status == model.InvitationPending {
			inv.Status = status
			now := time.Now()
			inv.RespondedAt = &now
		}
	}
	return nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uuid.UUID]*model.Assignment
	uploads     []*model.AssignmentFile
	groups      *fakeGroupRepo
}

func newFakeAssignmentRepo(groups *fakeGroupRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		assignments: make(map[uuid.UUID]*model.Assignment),
		groups:      groups,
	}
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *fakeAssignmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *assignment
	if group, ok := r.groups.groups[assignment.GroupID]; ok {
		out.Group = *group
	}
	out.Uploads = nil
	for _, upload := range r.uploads {
		if upload.AssignmentID == id {
			out.Uploads = append(out.Uploads, *upload)
		}
	}
	return &out, nil
}

func (r *fakeAssignmentRepo) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var assignments []*model.Assignment
	for _, assignment := range r.assignments {
		if assignment.GroupID == groupID {
			assignments = append(assignments, assignment)
		}
	}
	return assignments, nil
}

func (r *fakeAssignmentRepo) ListByGroupsByDeadline(ctx context.Context, groupIDs []uuid.UUID) ([]*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = true
	}
	var assignments []*model.Assignment
	for _, assignment := range r.assignments {
		if wanted[assignment.GroupID] {
			assignments = append(assignments, assignment)
		}
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		return assignments[i].Deadline.Before(assignments[j].Deadline)
	})
	return assignments, nil
}

func (r *fakeAssignmentRepo) ReplaceWorkDivision(ctx context.Context, assignmentID uuid.UUID, items []model.WorkItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[assignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.WorkDivision = items
	return nil
}

func (r *fakeAssignmentRepo) AddUpload(ctx context.Context, upload *model.AssignmentFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if upload.ID == uuid.Nil {
		upload.ID = uuid.New()
	}
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now()
	}
	r.uploads = append(r.uploads, upload)
	return nil
}

func (r *fakeAssignmentRepo) FindUpload(ctx context.Context, uploadID uuid.UUID) (*model.AssignmentFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, upload := range r.uploads {
		if upload.ID == uploadID {
			out := *upload
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssignmentRepo) DeleteUpload(ctx context.Context, uploadID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, upload := range r.uploads {
		if upload.ID == uploadID {
			r.uploads = append(r.uploads[:i], r.uploads[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAssignmentRepo) ListUploadsByUser(ctx context.Context, userID uuid.UUID) ([]*model.AssignmentFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var uploads []*model.AssignmentFile
	for i := len(r.uploads) - 1; i >= 0; i-- {
		upload := r.uploads[i]
		if upload.UserID != userID {
			continue
		}
		out := *upload
		if assignment, ok := r.assignments[upload.AssignmentID]; ok {
			out.Assignment = *assignment
			if group, ok := r.groups.groups[assignment.GroupID]; ok {
				out.Assignment.Group = *group
			}
		}
		uploads = append(uploads, &out)
	}
	return uploads, nil
}

type fakeProjectRepo struct {
	mu            sync.Mutex
	projects      map[uuid.UUID]*model.Project
	announcements []*model.Announcement
	// announcementErr makes CreateAnnouncement fail, for degraded-path tests.
	announcementErr error
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[uuid.UUID]*model.Project)}
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	r.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return project, nil
}

func (r *fakeProjectRepo) ListByClass(ctx context.Context, classID uuid.UUID) ([]*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var projects []*model.Project
	for _, project := range r.projects {
		if project.ClassID == classID {
			projects = append(projects, project)
		}
	}
	return projects, nil
}

func (r *fakeProjectRepo) ListByClassByDeadline(ctx context.Context, classID uuid.UUID) ([]*model.Project, error) {
	projects, err := r.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Deadline.Before(projects[j].Deadline)
	})
	return projects, nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, project *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) AddFile(ctx context.Context, file *model.ProjectFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	project, ok := r.projects[file.ProjectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	project.Files = append(project.Files, *file)
	return nil
}

func (r *fakeProjectRepo) CreateAnnouncement(ctx context.Context, announcement *model.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.announcementErr != nil {
		return r.announcementErr
	}
	if announcement.ID == uuid.Nil {
		announcement.ID = uuid.New()
	}
	r.announcements = append(r.announcements, announcement)
	return nil
}

func (r *fakeProjectRepo) ListAnnouncementsByClass(ctx context.Context, classID uuid.UUID) ([]*model.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var announcements []*model.Announcement
	for i := len(r.announcements) - 1; i >= 0; i-- {
		if r.announcements[i].ClassID == classID {
			announcements = append(announcements, r.announcements[i])
		}
	}
	return announcements, nil
}

func (r *fakeProjectRepo) ListAnnouncementsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var announcements []*model.Announcement
	for i := len(r.announcements) - 1; i >= 0; i-- {
		if r.announcements[i].TeacherID == teacherID {
			announcements = append(announcements, r.announcements[i])
		}
	}
	return announcements, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*model.Message
	nextSeq  int64
	users    *fakeUserRepo
}

func newFakeMessageRepo(users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{users: users}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	r.nextSeq++
	message.Seq = r.nextSeq
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	if user, ok := r.users.users[message.SenderID]; ok {
		message.Sender = *user
	}
	r.messages = append(r.messages, message)
	return nil
}

// newestFirst returns matches ordered by (created_at, seq) descending,
// truncated to limit, mirroring the SQL implementation.
func (r *fakeMessageRepo) newestFirst(match func(*model.Message) bool, limit int) []*model.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []*model.Message
	for _, message := range r.messages {
		if match(message) {
			matches = append(matches, message)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].Seq > matches[j].Seq
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (r *fakeMessageRepo) ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]*model.Message, error) {
	return r.newestFirst(func(m *model.Message) bool {
		return m.GroupID != nil && *m.GroupID == groupID
	}, limit), nil
}

func (r *fakeMessageRepo) ListByClass(ctx context.Context, classID uuid.UUID, limit int) ([]*model.Message, error) {
	return r.newestFirst(func(m *model.Message) bool {
		return m.ClassID != nil && *m.ClassID == classID
	}, limit), nil
}

func matchPrivate(m *model.Message, userA, userB uuid.UUID) bool {
	if m.RecipientID == nil {
		return false
	}
	return (m.SenderID == userA && *m.RecipientID == userB) ||
		(m.SenderID == userB && *m.RecipientID == userA)
}

func (r *fakeMessageRepo) ListPrivate(ctx context.Context, userA, userB uuid.UUID, limit int) ([]*model.Message, error) {
	return r.newestFirst(func(m *model.Message) bool {
		return matchPrivate(m, userA, userB)
	}, limit), nil
}

func (r *fakeMessageRepo) LastPrivate(ctx context.Context, userA, userB uuid.UUID) (*model.Message, error) {
	matches := r.newestFirst(func(m *model.Message) bool {
		return matchPrivate(m, userA, userB)
	}, 1)
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *fakeMessageRepo) ListPrivatePartners(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var partners []uuid.UUID
	for _, m := range r.messages {
		if m.RecipientID == nil {
			continue
		}
		var other uuid.UUID
		switch {
		case m.SenderID == userID:
			other = *m.RecipientID
		case *m.RecipientID == userID:
			other = m.SenderID
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			partners = append(partners, other)
		}
	}
	return partners, nil
}

// fakeFileStorage records uploads and returns deterministic URLs.
type fakeFileStorage struct {
	mu      sync.Mutex
	uploads []string
	deleted []string
}

func (s *fakeFileStorage) UploadFile(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "https://files.example.com/" + folder + "/" + fileName
	s.uploads = append(s.uploads, url)
	return url, nil
}

func (s *fakeFileStorage) DeleteFile(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, fileURL)
	return nil
}
