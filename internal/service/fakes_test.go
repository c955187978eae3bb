package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	"github.com/helpdeskhq/helpdesk-service/internal/repository"
)

// opLog records the order of persistence writes so tests can assert
// causal ordering across repositories.
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) record(op string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.ops...)
}

type fakeTicketRepo struct {
	mu         sync.Mutex
	tickets    map[string]*domain.Ticket
	nextNumber int64
	nextID     int
	log        *opLog
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}, nextNumber: 1000}
}

func (r *fakeTicketRepo) put(t domain.Ticket) *domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		r.nextID++
		t.ID = fmt.Sprintf("ticket-%d", r.nextID)
	}
	if t.TicketNumber == 0 {
		r.nextNumber++
		t.TicketNumber = r.nextNumber
	}
	stored := t
	r.tickets[t.ID] = &stored
	return &stored
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	stored := r.put(*ticket)
	*ticket = *stored
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	r.log.record("ticket_update")
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTicketRepo) GetByNumber(ctx context.Context, number int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.tickets {
		if stored.TicketNumber == number {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, stored := range r.tickets {
		if filter.BranchID != nil && stored.BranchID != *filter.BranchID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if stored.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *stored)
	}
	return out, nil
}

func (r *fakeTicketRepo) ClaimAssignee(ctx context.Context, ticketID, actorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticketID]
	if !ok {
		return false, nil
	}
	if stored.AssignedToID != nil && *stored.AssignedToID != "" {
		return false, nil
	}
	assignee := actorID
	stored.AssignedToID = &assignee
	stored.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeTicketRepo) ReleaseAssignee(ctx context.Context, ticketID, actorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticketID]
	if !ok {
		return false, nil
	}
	if stored.AssignedToID == nil || *stored.AssignedToID != actorID {
		return false, nil
	}
	stored.AssignedToID = nil
	stored.UpdatedAt = time.Now()
	return true, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCatalogRepo struct {
	services map[string]*domain.Service
}

func newFakeCatalogRepo(services ...domain.Service) *fakeCatalogRepo {
	repo := &fakeCatalogRepo{services: map[string]*domain.Service{}}
	for i := range services {
		s := services[i]
		repo.services[s.ID] = &s
	}
	return repo
}

func (r *fakeCatalogRepo) GetService(ctx context.Context, id string) (*domain.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (r *fakeCatalogRepo) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return nil, pgx.ErrNoRows
}

func (r *fakeCatalogRepo) ListServices(ctx context.Context, categoryID *string) ([]domain.Service, error) {
	var out []domain.Service
	for _, s := range r.services {
		out = append(out, *s)
	}
	return out, nil
}

type fakeApprovalRepo struct {
	mu      sync.Mutex
	records []domain.ApprovalRecord
	nextID  int
}

func (r *fakeApprovalRepo) Create(ctx context.Context, record *domain.ApprovalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = fmt.Sprintf("approval-%d", r.nextID)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeApprovalRepo) LatestByTicket(ctx context.Context, ticketID string) (*domain.ApprovalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.ApprovalRecord
	for i := range r.records {
		record := r.records[i]
		if record.TicketID != ticketID {
			continue
		}
		if latest == nil || record.CreatedAt.After(latest.CreatedAt) ||
			(record.CreatedAt.Equal(latest.CreatedAt) && record.ID > latest.ID) {
			copied := record
			latest = &copied
		}
	}
	return latest, nil
}

func (r *fakeApprovalRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.ApprovalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ApprovalRecord
	for _, record := range r.records {
		if record.TicketID == ticketID {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []domain.Comment
	nextID   int
	log      *opLog
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comment.ID = fmt.Sprintf("comment-%d", r.nextID)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	r.log.record("comment_create")
	return nil
}

func (r *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		out = append(out, comment)
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments []domain.Attachment
	nextID      int
	failKeys    map[string]error
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failKeys[attachment.StorageKey]; ok {
		return err
	}
	r.nextID++
	attachment.ID = fmt.Sprintf("attachment-%d", r.nextID)
	attachment.CreatedAt = time.Now()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByComment(ctx context.Context, commentID string) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Attachment
	for _, attachment := range r.attachments {
		if attachment.CommentID == commentID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

type fakeTaskRepo struct {
	mu        sync.Mutex
	tasks     map[string]*domain.Task
	templates map[string][]domain.TaskTemplateItem
	nextID    int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*domain.Task{}, templates: map[string][]domain.TaskTemplateItem{}}
}

func (r *fakeTaskRepo) CreateForTicket(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = fmt.Sprintf("task-%d", r.nextID)
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	stored := *task
	r.tasks[task.ID] = &stored
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, updatedByID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[taskID]
	if !ok {
		return pgx.ErrNoRows
	}
	task.Status = status
	task.UpdatedByID = &updatedByID
	task.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTaskRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, task := range r.tasks {
		if task.TicketID == ticketID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) TemplateItemsByService(ctx context.Context, serviceID string) ([]domain.TaskTemplateItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TaskTemplateItem{}, r.templates[serviceID]...), nil
}

type fakeVendorRepo struct {
	mu          sync.Mutex
	assignments []domain.VendorAssignment
	tickets     *fakeTicketRepo
	nextID      int
}

func (r *fakeVendorRepo) AssignTransactional(ctx context.Context, assignment *domain.VendorAssignment) error {
	r.mu.Lock()
	r.nextID++
	assignment.ID = fmt.Sprintf("vendor-assignment-%d", r.nextID)
	assignment.CreatedAt = time.Now()
	r.assignments = append(r.assignments, *assignment)
	r.mu.Unlock()

	ticket, err := r.tickets.GetByID(ctx, assignment.TicketID)
	if err != nil {
		return err
	}
	ticket.Status = domain.TicketStatusPendingVendor
	return r.tickets.Update(ctx, ticket)
}

func (r *fakeVendorRepo) GetByTicket(ctx context.Context, ticketID string) (*domain.VendorAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.assignments {
		if r.assignments[i].TicketID == ticketID {
			copied := r.assignments[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
	nextID  int
}

func (r *fakeHistoryRepo) Create(ctx context.Context, entry *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = fmt.Sprintf("history-%d", r.nextID)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// testEnv wires the services over the in-memory fakes.
type testEnv struct {
	tickets     *fakeTicketRepo
	users       *fakeUserRepo
	catalog     *fakeCatalogRepo
	approvals   *fakeApprovalRepo
	comments    *fakeCommentRepo
	attachments *fakeAttachmentRepo
	tasks       *fakeTaskRepo
	vendors     *fakeVendorRepo
	history     *fakeHistoryRepo
	log         *opLog

	ticketSvc   *TicketService
	claimSvc    *ClaimService
	approvalSvc *ApprovalService
	taskSvc     *TaskService
}

func newTestEnv(users ...domain.User) *testEnv {
	env := &testEnv{
		tickets:     newFakeTicketRepo(),
		users:       newFakeUserRepo(users...),
		catalog:     newFakeCatalogRepo(),
		approvals:   &fakeApprovalRepo{},
		comments:    &fakeCommentRepo{},
		attachments: &fakeAttachmentRepo{},
		tasks:       newFakeTaskRepo(),
		history:     &fakeHistoryRepo{},
		log:         &opLog{},
	}
	env.vendors = &fakeVendorRepo{tickets: env.tickets}
	env.tickets.log = env.log
	env.comments.log = env.log

	env.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:     env.tickets,
		CommentRepo:    env.comments,
		AttachmentRepo: env.attachments,
		CatalogRepo:    env.catalog,
		UserRepo:       env.users,
		ApprovalRepo:   env.approvals,
		TaskRepo:       env.tasks,
		VendorRepo:     env.vendors,
		HistoryRepo:    env.history,
	})
	env.claimSvc = NewClaimService(ClaimDependencies{
		TicketRepo:    env.tickets,
		UserRepo:      env.users,
		CatalogRepo:   env.catalog,
		ApprovalRepo:  env.approvals,
		HistoryRepo:   env.history,
		TicketService: env.ticketSvc,
	})
	env.approvalSvc = NewApprovalService(ApprovalDependencies{
		TicketRepo:   env.tickets,
		UserRepo:     env.users,
		CatalogRepo:  env.catalog,
		ApprovalRepo: env.approvals,
		HistoryRepo:  env.history,
	})
	env.taskSvc = NewTaskService(TaskDependencies{
		TaskRepo:     env.tasks,
		TicketRepo:   env.tickets,
		UserRepo:     env.users,
		CatalogRepo:  env.catalog,
		ApprovalRepo: env.approvals,
	})
	return env
}

func (env *testEnv) addService(svc domain.Service) {
	stored := svc
	env.catalog.services[svc.ID] = &stored
}

func (env *testEnv) addTicket(t domain.Ticket) *domain.Ticket {
	return env.tickets.put(t)
}
