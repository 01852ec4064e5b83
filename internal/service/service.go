package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/internal/store"
	"github.com/samandr77/microservices/claims/pkg/ratelimit"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=service.go -destination=../mocks/service.go -package=mocks -typed

type Store interface {
	ReadTable(ctx context.Context, table string, expected []string) (entity.Table, error)
	AppendRow(ctx context.Context, table string, columns []string, row []any) (int64, error)
	WriteBatch(ctx context.Context, table string, columns []string, rows [][]any, mode store.BatchMode) error
	UpdateCells(ctx context.Context, table string, columns []string, updates []entity.CellUpdate) error
	Stats() ratelimit.Stats
}

type Producer interface {
	Publish(ctx context.Context, key string, event any)
}

type Options struct {
	ClaimsTable  string
	ClientsTable string
	Catalog      entity.Catalog
	Location     *time.Location
	// RequireTechnicianForProgress rejects In progress claims without technicians.
	RequireTechnicianForProgress bool
	Now                          func() time.Time
}

type Service struct {
	store    Store
	producer Producer
	opts     Options
	locks    *keyedLocker
}

func New(st Store, producer Producer, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		store:    st,
		producer: producer,
		opts:     opts,
		locks:    newKeyedLocker(),
	}
}

func (s *Service) Catalog() entity.Catalog {
	return s.opts.Catalog
}

func (s *Service) StoreStats() ratelimit.Stats {
	return s.store.Stats()
}

func (s *Service) now() time.Time {
	return s.opts.Now().In(s.opts.Location).Truncate(time.Second)
}

func (s *Service) readClaims(ctx context.Context) (entity.Table, []entity.Claim, error) {
	tbl, err := s.store.ReadTable(ctx, s.opts.ClaimsTable, entity.ClaimColumns())
	if err != nil {
		return entity.Table{}, nil, fmt.Errorf("read claims: %w", err)
	}

	tbl = store.NormalizeKey(tbl, entity.ColClientNumber)

	claims := make([]entity.Claim, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		// A claim row without a client is a leftover of a manual edit, not a claim.
		if entity.Text(r.Values[entity.ColClientNumber]) == "" {
			continue
		}

		claims = append(claims, claimFromRow(r, s.opts.Location))
	}

	return tbl, claims, nil
}

func (s *Service) readClients(ctx context.Context) (entity.Table, error) {
	tbl, err := s.store.ReadTable(ctx, s.opts.ClientsTable, entity.ClientColumns())
	if err != nil {
		return entity.Table{}, fmt.Errorf("read clients: %w", err)
	}

	tbl = store.NormalizeKey(tbl, entity.ColClientNumber)
	tbl = store.NormalizeKey(tbl, entity.ColSealNumber)

	return tbl, nil
}

func (s *Service) publish(ctx context.Context, c entity.Claim) {
	if s.producer == nil {
		return
	}

	s.producer.Publish(ctx, c.ClientNumber, entity.ClaimEvent{
		ClaimID:      c.ID,
		ClientNumber: c.ClientNumber,
		Status:       c.Status,
		Technicians:  c.Technicians,
		At:           s.now(),
	})
}

func findClaim(claims []entity.Claim, id entity.ClaimID) (entity.Claim, error) {
	for _, c := range claims {
		if c.ID == id {
			return c, nil
		}
	}

	return entity.Claim{}, fmt.Errorf("%w: claim %d", entity.ErrNotFound, id)
}

func findClient(tbl entity.Table, number string) (entity.Client, bool) {
	for _, r := range tbl.Rows {
		if r.Text(entity.ColClientNumber) == number {
			return clientFromRow(r), true
		}
	}

	return entity.Client{}, false
}

func activeFor(claims []entity.Claim, number string) []entity.Claim {
	active := []entity.Claim{}

	for _, c := range claims {
		if c.ClientNumber == number && c.Status.Active() {
			active = append(active, c)
		}
	}

	return active
}

// newestFirst orders claims by creation time, then by id, descending.
func newestFirst(claims []entity.Claim) {
	slices.SortStableFunc(claims, func(a, b entity.Claim) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(b.ID, a.ID)
	})
}

func claimFromRow(r entity.Row, loc *time.Location) entity.Claim {
	c := entity.Claim{
		ID:           entity.ClaimID(r.Ref),
		ClientNumber: r.Text(entity.ColClientNumber),
		Sector:       r.Text(entity.ColSector),
		Name:         r.Text(entity.ColName),
		Address:      r.Text(entity.ColAddress),
		Phone:        r.Text(entity.ColPhone),
		ClaimType:    r.Text(entity.ColClaimType),
		Details:      r.Text(entity.ColDetails),
		Technicians:  entity.SplitTechnicians(r.Text(entity.ColTechnicians)),
		SealNumber:   r.Text(entity.ColSealNumber),
		HandledBy:    r.Text(entity.ColHandledBy),
		Status:       statusOf(r.Text(entity.ColStatus)),
	}

	if t, ok := entity.ParseStamp(r.Values[entity.ColCreatedAt], loc); ok {
		c.CreatedAt = t
	}

	if t, ok := entity.ParseStamp(r.Values[entity.ColResolvedAt], loc); ok {
		c.ResolvedAt = &t
	}

	return c
}

// statusOf treats a blank status cell as Pending and keeps unknown labels verbatim, which
// makes them inactive.
func statusOf(raw string) entity.Status {
	if raw == "" {
		return entity.StatusPending
	}

	st, err := entity.ParseStatus(raw)
	if err != nil {
		return entity.Status(raw)
	}

	return st
}

func clientFromRow(r entity.Row) entity.Client {
	return entity.Client{
		Ref:        r.Ref,
		Number:     r.Text(entity.ColClientNumber),
		Sector:     r.Text(entity.ColSector),
		Name:       r.Text(entity.ColName),
		Address:    r.Text(entity.ColAddress),
		Phone:      r.Text(entity.ColPhone),
		SealNumber: r.Text(entity.ColSealNumber),
	}
}

func clientValues(c entity.Client) map[string]any {
	return map[string]any{
		entity.ColClientNumber: c.Number,
		entity.ColSector:       c.Sector,
		entity.ColName:         c.Name,
		entity.ColAddress:      c.Address,
		entity.ColPhone:        c.Phone,
		entity.ColSealNumber:   c.SealNumber,
	}
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizeClient(c entity.Client) entity.Client {
	return entity.Client{
		Ref:        c.Ref,
		Number:     entity.CanonicalKey(c.Number),
		Sector:     upper(c.Sector),
		Name:       upper(c.Name),
		Address:    upper(c.Address),
		Phone:      strings.TrimSpace(c.Phone),
		SealNumber: entity.CanonicalKey(c.SealNumber),
	}
}
