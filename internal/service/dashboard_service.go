package service

import (
	"context"
	"fmt"

	"taskAssistant/internal/constants"
	"taskAssistant/internal/models/task"
	"taskAssistant/internal/models/thread"

	"github.com/google/uuid"
)

// Table names one store table the dashboard reports on.
type Table int

const (
	TableTasks Table = iota
	TableThreads
	TableMessages
)

var Tables = []Table{TableTasks, TableThreads, TableMessages}

func (t Table) String() string {
	switch t {
	case TableTasks:
		return "tasks"
	case TableThreads:
		return "threads"
	case TableMessages:
		return "messages"
	default:
		return fmt.Sprintf("table(%d)", int(t))
	}
}

func (t Table) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type TableSummary struct {
	Table    Table          `json:"table"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status,omitempty"`
}

type Summary struct {
	Tables []TableSummary `json:"tables"`
}

func (s *Summary) Get(t Table) (TableSummary, bool) {
	for _, ts := range s.Tables {
		if ts.Table == t {
			return ts, true
		}
	}
	return TableSummary{}, false
}

type DashboardService struct {
	repo DashboardRepository
}

func NewDashboardService(repo DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// Summary counts the caller's rows in every table.
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Tables: make([]TableSummary, 0, len(Tables))}
	for _, t := range Tables {
		ts, err := s.count(ctx, t, userID)
		if err != nil {
			return nil, err
		}
		summary.Tables = append(summary.Tables, ts)
	}
	return summary, nil
}

func (s *DashboardService) count(ctx context.Context, t Table, userID uuid.UUID) (TableSummary, error) {
	switch t {
	case TableTasks:
		return s.countTasks(ctx, userID)
	case TableThreads:
		return s.countThreads(ctx, userID)
	case TableMessages:
		return s.countMessages(ctx, userID)
	default:
		return TableSummary{}, fmt.Errorf("unknown table %s", t)
	}
}

func (s *DashboardService) countTasks(ctx context.Context, userID uuid.UUID) (TableSummary, error) {
	counts, err := s.repo.CountTasksByStatus(ctx, userID)
	if err != nil {
		return TableSummary{}, fmt.Errorf("counting tasks: %w", err)
	}
	ts := TableSummary{Table: TableTasks, ByStatus: make(map[string]int, len(task.Statuses))}
	for _, status := range task.Statuses {
		ts.ByStatus[string(status)] = counts[status]
		ts.Total += counts[status]
	}
	return ts, nil
}

func (s *DashboardService) countThreads(ctx context.Context, userID uuid.UUID) (TableSummary, error) {
	counts, err := s.repo.CountThreadsByStatus(ctx, userID)
	if err != nil {
		return TableSummary{}, fmt.Errorf("counting threads: %w", err)
	}
	ts := TableSummary{Table: TableThreads, ByStatus: make(map[string]int, len(thread.Statuses))}
	for _, status := range thread.Statuses {
		ts.ByStatus[string(status)] = counts[status]
		ts.Total += counts[status]
	}
	return ts, nil
}

func (s *DashboardService) countMessages(ctx context.Context, userID uuid.UUID) (TableSummary, error) {
	n, err := s.repo.CountMessages(ctx, userID)
	if err != nil {
		return TableSummary{}, fmt.Errorf("counting messages: %w", err)
	}
	return TableSummary{Table: TableMessages, Total: n}, nil
}

// Recent returns the caller's most recently updated tasks, deleted ones excluded.
func (s *DashboardService) Recent(ctx context.Context, limit int) ([]*task.Task, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = constants.DefaultRecentLimit
	}
	if limit > constants.MaxRecentLimit {
		limit = constants.MaxRecentLimit
	}

	tasks, err := s.repo.ListRecentTasks(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent tasks: %w", err)
	}
	return tasks, nil
}
