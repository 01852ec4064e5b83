package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/pkg/logger"
)

// CreateClaim registers a Pending claim. A client number nobody has used yet creates the
// client from the claim input first. Fields left empty are taken from the stored client.
func (s *Service) CreateClaim(ctx context.Context, in entity.ClaimInput) (entity.Claim, error) {
	in = normalizeClaimInput(in)

	if in.ClientNumber == "" || in.HandledBy == "" || in.ClaimType == "" {
		return entity.Claim{}, fmt.Errorf("%w: client number, claim type and handled by are required",
			entity.ErrClientRequiredFieldsMissing)
	}

	claimType, ok := s.opts.Catalog.ClaimType(in.ClaimType)
	if !ok {
		return entity.Claim{}, fmt.Errorf("%w: unknown claim type %q", entity.ErrInvalidArgument, in.ClaimType)
	}

	in.ClaimType = claimType

	ctx = logger.WithClientNumber(ctx, in.ClientNumber)

	unlock := s.locks.Lock(in.ClientNumber)
	defer unlock()

	claimsTbl, claims, err := s.readClaims(ctx)
	if err != nil {
		return entity.Claim{}, err
	}

	if active := activeFor(claims, in.ClientNumber); len(active) > 0 {
		return entity.Claim{}, fmt.Errorf("%w: client %s has claim %d in status %s",
			entity.ErrActiveClaimExists, in.ClientNumber, active[0].ID, active[0].Status)
	}

	clientsTbl, err := s.readClients(ctx)
	if err != nil {
		return entity.Claim{}, err
	}

	client, exists := findClient(clientsTbl, in.ClientNumber)
	if exists {
		in = fillFromClient(in, client)
	}

	if in.Name == "" {
		return entity.Claim{}, fmt.Errorf("%w: name is required for a new client", entity.ErrClientRequiredFieldsMissing)
	}

	if !exists {
		client = entity.Client{
			Number:     in.ClientNumber,
			Sector:     in.Sector,
			Name:       in.Name,
			Address:    in.Address,
			Phone:      in.Phone,
			SealNumber: in.SealNumber,
		}

		client.Ref, err = s.store.AppendRow(ctx, s.opts.ClientsTable, clientsTbl.Columns, clientsTbl.Values(clientValues(client)))
		if err != nil {
			return entity.Claim{}, fmt.Errorf("create client: %w", err)
		}

		slog.InfoContext(ctx, "client created from claim intake")
	}

	claim := entity.Claim{
		CreatedAt:    s.now(),
		ClientNumber: in.ClientNumber,
		Sector:       in.Sector,
		Name:         in.Name,
		Address:      in.Address,
		Phone:        in.Phone,
		ClaimType:    in.ClaimType,
		Details:      in.Details,
		Status:       entity.StatusPending,
		Technicians:  []string{},
		SealNumber:   in.SealNumber,
		HandledBy:    in.HandledBy,
	}

	ref, err := s.store.AppendRow(ctx, s.opts.ClaimsTable, claimsTbl.Columns, claimsTbl.Values(map[string]any{
		entity.ColCreatedAt:    claim.CreatedAt,
		entity.ColClientNumber: claim.ClientNumber,
		entity.ColSector:       claim.Sector,
		entity.ColName:         claim.Name,
		entity.ColAddress:      claim.Address,
		entity.ColPhone:        claim.Phone,
		entity.ColClaimType:    claim.ClaimType,
		entity.ColDetails:      claim.Details,
		entity.ColStatus:       string(claim.Status),
		entity.ColTechnicians:  "",
		entity.ColSealNumber:   claim.SealNumber,
		entity.ColHandledBy:    claim.HandledBy,
		entity.ColResolvedAt:   "",
	}))
	if err != nil {
		return entity.Claim{}, fmt.Errorf("append claim: %w", err)
	}

	claim.ID = entity.ClaimID(ref)

	slog.InfoContext(ctx, "claim created", "claim_id", claim.ID, "claim_type", claim.ClaimType)
	s.publish(ctx, claim)

	return claim, nil
}

// AssignTechnicians sets the technician list and moves the claim to status in one update.
func (s *Service) AssignTechnicians(
	ctx context.Context,
	id entity.ClaimID,
	technicians []string,
	status entity.Status,
) (entity.Claim, error) {
	names, err := s.rosterNames(technicians)
	if err != nil {
		return entity.Claim{}, err
	}

	tbl, claims, err := s.readClaims(ctx)
	if err != nil {
		return entity.Claim{}, err
	}

	claim, err := findClaim(claims, id)
	if err != nil {
		return entity.Claim{}, err
	}

	ctx = logger.WithClientNumber(ctx, claim.ClientNumber)

	err = s.checkAssignment(claim.Status, status, names)
	if err != nil {
		return entity.Claim{}, err
	}

	if status == entity.StatusResolved && len(names) == 0 {
		names = claim.Technicians
	}

	updates := []entity.CellUpdate{
		{Ref: int64(id), Column: entity.ColStatus, Value: string(status)},
		{Ref: int64(id), Column: entity.ColTechnicians, Value: entity.JoinTechnicians(names)},
	}

	claim.Status = status
	claim.Technicians = names

	if status == entity.StatusResolved {
		at := s.now()
		claim.ResolvedAt = &at
		updates = append(updates, entity.CellUpdate{Ref: int64(id), Column: entity.ColResolvedAt, Value: at})
	}

	err = s.store.UpdateCells(ctx, s.opts.ClaimsTable, tbl.Columns, updates)
	if err != nil {
		return entity.Claim{}, fmt.Errorf("update claim %d: %w", id, err)
	}

	slog.InfoContext(ctx, "technicians assigned", "claim_id", id, "status", status, "technicians", names)
	s.publish(ctx, claim)

	return claim, nil
}

// Resolve closes an In progress claim. A non-empty seal that differs from the client's
// current one is written to the client afterwards; if that write fails the claim stays
// resolved and the error wraps entity.ErrSealNotPropagated.
func (s *Service) Resolve(ctx context.Context, id entity.ClaimID, seal *string) (entity.Claim, error) {
	tbl, claims, err := s.readClaims(ctx)
	if err != nil {
		return entity.Claim{}, err
	}

	claim, err := findClaim(claims, id)
	if err != nil {
		return entity.Claim{}, err
	}

	ctx = logger.WithClientNumber(ctx, claim.ClientNumber)

	if claim.Status != entity.StatusInProgress {
		return entity.Claim{}, fmt.Errorf("%w: claim %d is %s, only %s claims can be resolved",
			entity.ErrInvalidTransition, id, claim.Status, entity.StatusInProgress)
	}

	at := s.now()

	err = s.store.UpdateCells(ctx, s.opts.ClaimsTable, tbl.Columns, []entity.CellUpdate{
		{Ref: int64(id), Column: entity.ColStatus, Value: string(entity.StatusResolved)},
		{Ref: int64(id), Column: entity.ColResolvedAt, Value: at},
	})
	if err != nil {
		return entity.Claim{}, fmt.Errorf("resolve claim %d: %w", id, err)
	}

	claim.Status = entity.StatusResolved
	claim.ResolvedAt = &at

	slog.InfoContext(ctx, "claim resolved", "claim_id", id)
	s.publish(ctx, claim)

	if seal == nil {
		return claim, nil
	}

	newSeal := entity.CanonicalKey(*seal)
	if newSeal == "" {
		return claim, nil
	}

	err = s.propagateSeal(ctx, claim.ClientNumber, newSeal)
	if err != nil {
		slog.WarnContext(ctx, "seal not propagated", "claim_id", id, "error", err)
		return claim, fmt.Errorf("%w: %w", entity.ErrSealNotPropagated, err)
	}

	return claim, nil
}

func (s *Service) propagateSeal(ctx context.Context, number, seal string) error {
	clients, err := s.readClients(ctx)
	if err != nil {
		return err
	}

	client, ok := findClient(clients, number)
	if !ok || client.SealNumber == seal {
		return nil
	}

	err = s.store.UpdateCells(ctx, s.opts.ClientsTable, clients.Columns, []entity.CellUpdate{
		{Ref: client.Ref, Column: entity.ColSealNumber, Value: seal},
	})
	if err != nil {
		return fmt.Errorf("update client seal: %w", err)
	}

	slog.InfoContext(ctx, "client seal updated", "seal_number", seal)

	return nil
}

// Reopen sends an In progress or Resolved claim back to Pending and clears its technicians
// and resolution time. A resolved claim is only reopened while the client has no other
// active claim.
func (s *Service) Reopen(ctx context.Context, id entity.ClaimID) (entity.Claim, error) {
	tbl, claims, err := s.readClaims(ctx)
	if err != nil {
		return entity.Claim{}, err
	}

	claim, err := findClaim(claims, id)
	if err != nil {
		return entity.Claim{}, err
	}

	ctx = logger.WithClientNumber(ctx, claim.ClientNumber)

	switch claim.Status {
	case entity.StatusInProgress:
	case entity.StatusResolved:
		unlock := s.locks.Lock(claim.ClientNumber)
		defer unlock()

		tbl, claims, err = s.readClaims(ctx)
		if err != nil {
			return entity.Claim{}, err
		}

		claim, err = findClaim(claims, id)
		if err != nil {
			return entity.Claim{}, err
		}

		if claim.Status != entity.StatusResolved {
			return entity.Claim{}, fmt.Errorf("%w: claim %d changed to %s", entity.ErrInvalidTransition, id, claim.Status)
		}

		for _, other := range activeFor(claims, claim.ClientNumber) {
			if other.ID != id {
				return entity.Claim{}, fmt.Errorf("%w: client %s has claim %d in status %s",
					entity.ErrActiveClaimExists, claim.ClientNumber, other.ID, other.Status)
			}
		}
	default:
		return entity.Claim{}, fmt.Errorf("%w: claim %d is %s", entity.ErrInvalidTransition, id, claim.Status)
	}

	err = s.store.UpdateCells(ctx, s.opts.ClaimsTable, tbl.Columns, []entity.CellUpdate{
		{Ref: int64(id), Column: entity.ColStatus, Value: string(entity.StatusPending)},
		{Ref: int64(id), Column: entity.ColTechnicians, Value: ""},
		{Ref: int64(id), Column: entity.ColResolvedAt, Value: ""},
	})
	if err != nil {
		return entity.Claim{}, fmt.Errorf("reopen claim %d: %w", id, err)
	}

	claim.Status = entity.StatusPending
	claim.Technicians = []string{}
	claim.ResolvedAt = nil

	slog.InfoContext(ctx, "claim reopened", "claim_id", id)
	s.publish(ctx, claim)

	return claim, nil
}

// ListActiveForClient returns the client's Pending and In progress claims.
func (s *Service) ListActiveForClient(ctx context.Context, number string) ([]entity.Claim, error) {
	number = entity.CanonicalKey(number)
	if number == "" {
		return nil, fmt.Errorf("%w: client number is required", entity.ErrInvalidArgument)
	}

	_, claims, err := s.readClaims(ctx)
	if err != nil {
		return nil, err
	}

	active := activeFor(claims, number)
	newestFirst(active)

	return active, nil
}

// CurrentClaim returns the most recent active claim of the client.
func (s *Service) CurrentClaim(ctx context.Context, number string) (entity.Claim, error) {
	active, err := s.ListActiveForClient(ctx, number)
	if err != nil {
		return entity.Claim{}, err
	}

	if len(active) == 0 {
		return entity.Claim{}, fmt.Errorf("%w: client %s has no active claim", entity.ErrNotFound, entity.CanonicalKey(number))
	}

	return active[0], nil
}

// ClientHistory returns every claim of the client, newest first.
func (s *Service) ClientHistory(ctx context.Context, number string) ([]entity.Claim, error) {
	number = entity.CanonicalKey(number)
	if number == "" {
		return nil, fmt.Errorf("%w: client number is required", entity.ErrInvalidArgument)
	}

	_, claims, err := s.readClaims(ctx)
	if err != nil {
		return nil, err
	}

	history := []entity.Claim{}

	for _, c := range claims {
		if c.ClientNumber == number {
			history = append(history, c)
		}
	}

	newestFirst(history)

	return history, nil
}

func (s *Service) GetClaim(ctx context.Context, id entity.ClaimID) (entity.Claim, error) {
	_, claims, err := s.readClaims(ctx)
	if err != nil {
		return entity.Claim{}, err
	}

	return findClaim(claims, id)
}

func (s *Service) ListClaims(ctx context.Context, f entity.ClaimFilter) ([]entity.Claim, error) {
	_, claims, err := s.readClaims(ctx)
	if err != nil {
		return nil, err
	}

	out := []entity.Claim{}

	for _, c := range claims {
		if f.Status != "" && c.Status != f.Status {
			continue
		}

		if f.Sector != "" && !strings.EqualFold(c.Sector, f.Sector) {
			continue
		}

		if f.ClaimType != "" && !strings.EqualFold(c.ClaimType, f.ClaimType) {
			continue
		}

		out = append(out, c)
	}

	newestFirst(out)

	return out, nil
}

// Summary counts claims per status and active claims per claim type.
func (s *Service) Summary(ctx context.Context) (entity.Summary, error) {
	_, claims, err := s.readClaims(ctx)
	if err != nil {
		return entity.Summary{}, err
	}

	sum := entity.Summary{ActiveByType: make(map[string]int)}

	for _, c := range claims {
		switch c.Status {
		case entity.StatusPending:
			sum.Pending++
		case entity.StatusInProgress:
			sum.InProgress++
		case entity.StatusResolved:
			sum.Resolved++
		}

		if c.Status.Active() {
			sum.Active++
			sum.ActiveByType[c.ClaimType]++
		}
	}

	return sum, nil
}

// checkAssignment enforces the transitions reachable through technician assignment.
// Going back to Pending is only possible through Reopen.
func (s *Service) checkAssignment(from, to entity.Status, technicians []string) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown status %q", entity.ErrInvalidArgument, to)
	}

	allowed := false

	switch from {
	case entity.StatusPending:
		allowed = to == entity.StatusPending || to == entity.StatusInProgress
	case entity.StatusInProgress:
		allowed = to == entity.StatusInProgress || to == entity.StatusResolved
	}

	if !allowed {
		return fmt.Errorf("%w: %s to %s", entity.ErrInvalidTransition, from, to)
	}

	if to == entity.StatusInProgress && s.opts.RequireTechnicianForProgress && len(technicians) == 0 {
		return fmt.Errorf("%w: %s requires at least one technician", entity.ErrInvalidTransition, to)
	}

	return nil
}

// rosterNames maps names to their roster spelling and drops repeats.
func (s *Service) rosterNames(names []string) ([]string, error) {
	out := make([]string, 0, len(names))

	var unknown []string

	for _, n := range names {
		canonical, ok := s.opts.Catalog.Technician(n)
		if !ok {
			unknown = append(unknown, strings.TrimSpace(n))
			continue
		}

		if !slices.Contains(out, canonical) {
			out = append(out, canonical)
		}
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrInvalidTechnicianRoster, strings.Join(unknown, ", "))
	}

	return out, nil
}

func normalizeClaimInput(in entity.ClaimInput) entity.ClaimInput {
	return entity.ClaimInput{
		ClientNumber: entity.CanonicalKey(in.ClientNumber),
		Sector:       upper(in.Sector),
		Name:         upper(in.Name),
		Address:      upper(in.Address),
		Phone:        strings.TrimSpace(in.Phone),
		ClaimType:    strings.TrimSpace(in.ClaimType),
		Details:      upper(in.Details),
		SealNumber:   entity.CanonicalKey(in.SealNumber),
		HandledBy:    upper(in.HandledBy),
	}
}

func fillFromClient(in entity.ClaimInput, c entity.Client) entity.ClaimInput {
	in.Sector = cmp.Or(in.Sector, c.Sector)
	in.Name = cmp.Or(in.Name, c.Name)
	in.Address = cmp.Or(in.Address, c.Address)
	in.Phone = cmp.Or(in.Phone, c.Phone)
	in.SealNumber = cmp.Or(in.SealNumber, c.SealNumber)

	return in
}
