package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leavetracker/internal/platform/querier"
	"leavetracker/internal/requestctx"
)

type Entry struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"userId,omitempty"`
	UserName    string    `json:"userName,omitempty"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ipAddress"`
	UserAgent   string    `json:"userAgent"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Filter struct {
	UserID int64
	Action string
	Search string
	From   time.Time
	To     time.Time
}

type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

// Record appends one entry. The client address and user agent come from the
// request context when present.
func (s *Service) Record(ctx context.Context, userID int64, action, description string) error {
	client := requestctx.GetClient(ctx)
	var actor any
	if userID > 0 {
		actor = userID
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO activity_logs (user_id, action, description, ip_address, user_agent)
    VALUES ($1,$2,$3,$4,$5)
  `, actor, action, description, client.IP, truncate(client.UserAgent, 512))
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	query, args := buildBaseQuery("SELECT al.id, al.user_id, COALESCE(u.name, ''), al.action, al.description, al.ip_address, al.user_agent, al.created_at", filter)
	query += fmt.Sprintf(" ORDER BY al.created_at DESC, al.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return s.scan(ctx, query, args...)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.List(ctx, Filter{}, limit, 0)
}

func (s *Service) scan(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Action, &e.Description, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM activity_logs al LEFT JOIN users u ON u.id = al.user_id WHERE 1=1"
	var args []any
	if filter.UserID > 0 {
		query += fmt.Sprintf(" AND al.user_id = $%d", len(args)+1)
		args = append(args, filter.UserID)
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND al.action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pos := len(args) + 1
		query += fmt.Sprintf(" AND (al.description ILIKE $%d OR al.ip_address ILIKE $%d OR COALESCE(u.name, '') ILIKE $%d)", pos, pos, pos)
		args = append(args, "%"+search+"%")
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND al.created_at >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND al.created_at < $%d", len(args)+1)
		args = append(args, filter.To)
	}
	return query, args
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
