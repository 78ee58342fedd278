package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/junketops/junket-engine/internal/model"
	"github.com/junketops/junket-engine/internal/sharing"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// --- Directory ---

func (s *PostgresStore) CreateCustomer(ctx context.Context, c *model.Customer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO customers (id, name, phone, email, agent_id, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.Phone, c.Email, c.AgentID, c.Notes, c.CreatedAt)
	return mapErr(err, "customer "+c.ID)
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, phone, email, agent_id, notes, created_at FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.AgentID, &c.Notes, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "customer "+id)
	}
	return &c, nil
}

func (s *PostgresStore) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, phone, email, agent_id, notes, created_at
		 FROM customers ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.AgentID, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteCustomer(ctx context.Context, id string) error {
	return s.execOne(ctx, "customer "+id, `DELETE FROM customers WHERE id = $1`, id)
}

func (s *PostgresStore) CreateAgent(ctx context.Context, a *model.Agent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO agents (id, name, phone, email, created_at) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Name, a.Phone, a.Email, a.CreatedAt)
	return mapErr(err, "agent "+a.ID)
}

func (s *PostgresStore) GetAgent(ctx context.Context, id string) (*model.Agent, error) {
	var a model.Agent
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, phone, email, created_at FROM agents WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Phone, &a.Email, &a.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "agent "+id)
	}
	return &a, nil
}

func (s *PostgresStore) ListAgents(ctx context.Context) ([]model.Agent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, phone, email, created_at FROM agents ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Agent{}
	for rows.Next() {
		var a model.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Phone, &a.Email, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteAgent(ctx context.Context, id string) error {
	return s.execOne(ctx, "agent "+id, `DELETE FROM agents WHERE id = $1`, id)
}

func (s *PostgresStore) CreateStaff(ctx context.Context, st *model.Staff) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO staff (id, name, position, phone, created_at) VALUES ($1, $2, $3, $4, $5)`,
		st.ID, st.Name, st.Position, st.Phone, st.CreatedAt)
	return mapErr(err, "staff "+st.ID)
}

func (s *PostgresStore) ListStaff(ctx context.Context) ([]model.Staff, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, position, phone, created_at FROM staff ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Staff{}
	for rows.Next() {
		var st model.Staff
		if err := rows.Scan(&st.ID, &st.Name, &st.Position, &st.Phone, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteStaff(ctx context.Context, id string) error {
	return s.execOne(ctx, "staff "+id, `DELETE FROM staff WHERE id = $1`, id)
}

// --- Trips ---

func (s *PostgresStore) CreateTrip(ctx context.Context, t *model.Trip) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO trips (id, name, destination, status, start_date, end_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Name, t.Destination, string(t.Status), t.StartDate, t.EndDate, t.CreatedAt)
	if err != nil {
		return mapErr(err, "trip "+t.ID)
	}

	for _, a := range t.Agents {
		if _, err := tx.Exec(ctx,
			`INSERT INTO trip_agents (trip_id, agent_id, agent_name, share_percentage)
			 VALUES ($1, $2, $3, $4::NUMERIC)`,
			t.ID, a.AgentID, a.AgentName, a.SharePercentage.String()); err != nil {
			return mapErr(err, "trip agent "+a.AgentID)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetTrip(ctx context.Context, id string) (*model.Trip, error) {
	var t model.Trip
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, destination, status, start_date, end_date, created_at
		 FROM trips WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Destination, &status, &t.StartDate, &t.EndDate, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "trip "+id)
	}
	t.Status = model.TripStatus(status)

	agents, err := s.loadAgents(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Agents = agents[id]
	if t.Agents == nil {
		t.Agents = []sharing.TripAgent{}
	}
	return &t, nil
}

func (s *PostgresStore) ListTrips(ctx context.Context) ([]model.Trip, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, destination, status, start_date, end_date, created_at
		 FROM trips ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []model.Trip{}
	for rows.Next() {
		var t model.Trip
		var status string
		if err := rows.Scan(&t.ID, &t.Name, &t.Destination, &status,
			&t.StartDate, &t.EndDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Status = model.TripStatus(status)
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	agents, err := s.loadAgents(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range trips {
		trips[i].Agents = agents[trips[i].ID]
		if trips[i].Agents == nil {
			trips[i].Agents = []sharing.TripAgent{}
		}
	}
	return trips, nil
}

// loadAgents returns trip agents keyed by trip ID, in insertion order.
// An empty tripID loads agents for every trip.
func (s *PostgresStore) loadAgents(ctx context.Context, tripID string) (map[string][]sharing.TripAgent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT trip_id, agent_id, agent_name, share_percentage::TEXT
		 FROM trip_agents WHERE $1 = '' OR trip_id = $1
		 ORDER BY trip_id, position`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]sharing.TripAgent)
	for rows.Next() {
		var tid, pctS string
		var a sharing.TripAgent
		if err := rows.Scan(&tid, &a.AgentID, &a.AgentName, &pctS); err != nil {
			return nil, err
		}
		a.SharePercentage, _ = decimal.NewFromString(pctS)
		out[tid] = append(out[tid], a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateTripStatus(ctx context.Context, id string, status model.TripStatus) error {
	return s.execOne(ctx, "trip "+id,
		`UPDATE trips SET status = $2 WHERE id = $1`, id, string(status))
}

func (s *PostgresStore) DeleteTrip(ctx context.Context, id string) error {
	return s.execOne(ctx, "trip "+id, `DELETE FROM trips WHERE id = $1`, id)
}

func (s *PostgresStore) SetTripAgent(ctx context.Context, tripID string, a sharing.TripAgent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO trip_agents (trip_id, agent_id, agent_name, share_percentage)
		 VALUES ($1, $2, $3, $4::NUMERIC)
		 ON CONFLICT (trip_id, agent_id)
		 DO UPDATE SET agent_name = EXCLUDED.agent_name, share_percentage = EXCLUDED.share_percentage`,
		tripID, a.AgentID, a.AgentName, a.SharePercentage.String())
	return mapErr(err, "trip "+tripID)
}

func (s *PostgresStore) RemoveTripAgent(ctx context.Context, tripID, agentID string) error {
	return s.execOne(ctx, fmt.Sprintf("agent %s on trip %s", agentID, tripID),
		`DELETE FROM trip_agents WHERE trip_id = $1 AND agent_id = $2`, tripID, agentID)
}

// --- Trip customers and expenses ---

func (s *PostgresStore) UpsertTripCustomer(ctx context.Context, tc *model.TripCustomer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO trip_customers (trip_id, customer_id, customer_name,
		        buy_in, buy_out, win_loss, rolling_amount, rolling_commission, updated_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC, $9)
		 ON CONFLICT (trip_id, customer_id) DO UPDATE SET
		        customer_name = EXCLUDED.customer_name,
		        buy_in = EXCLUDED.buy_in,
		        buy_out = EXCLUDED.buy_out,
		        win_loss = EXCLUDED.win_loss,
		        rolling_amount = EXCLUDED.rolling_amount,
		        rolling_commission = EXCLUDED.rolling_commission,
		        updated_at = EXCLUDED.updated_at`,
		tc.TripID, tc.CustomerID, tc.CustomerName,
		tc.BuyIn.String(), tc.BuyOut.String(), tc.WinLoss.String(),
		tc.RollingAmount.String(), tc.RollingCommission.String(),
		tc.UpdatedAt)
	return mapErr(err, "trip "+tc.TripID)
}

const tripCustomerColumns = `trip_id, customer_id, customer_name,
	buy_in::TEXT, buy_out::TEXT, win_loss::TEXT,
	rolling_amount::TEXT, rolling_commission::TEXT, updated_at`

func (s *PostgresStore) GetTripCustomer(ctx context.Context, tripID, customerID string) (*model.TripCustomer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tripCustomerColumns+` FROM trip_customers
		 WHERE trip_id = $1 AND customer_id = $2`, tripID, customerID)
	tc, err := scanTripCustomer(row)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("customer %s on trip %s", customerID, tripID))
	}
	return tc, nil
}

func (s *PostgresStore) ListTripCustomers(ctx context.Context, tripID string) ([]model.TripCustomer, error) {
	if err := s.tripExists(ctx, tripID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+tripCustomerColumns+` FROM trip_customers
		 WHERE trip_id = $1 ORDER BY customer_name, customer_id`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TripCustomer{}
	for rows.Next() {
		tc, err := scanTripCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AddExpense(ctx context.Context, e *model.Expense) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO expenses (id, trip_id, description, amount, incurred_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5)`,
		e.ID, e.TripID, e.Description, e.Amount.String(), e.IncurredAt)
	return mapErr(err, "trip "+e.TripID)
}

func (s *PostgresStore) ListExpenses(ctx context.Context, tripID string) ([]model.Expense, error) {
	if err := s.tripExists(ctx, tripID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, trip_id, description, amount::TEXT, incurred_at
		 FROM expenses WHERE trip_id = $1 ORDER BY incurred_at, id`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Expense{}
	for rows.Next() {
		var e model.Expense
		var amountS string
		if err := rows.Scan(&e.ID, &e.TripID, &e.Description, &amountS, &e.IncurredAt); err != nil {
			return nil, err
		}
		e.Amount, _ = decimal.NewFromString(amountS)
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- Aggregation ---

func (s *PostgresStore) GetTripTotals(ctx context.Context, tripID string) (model.TripTotals, error) {
	if err := s.tripExists(ctx, tripID); err != nil {
		return model.TripTotals{}, err
	}

	totals := model.TripTotals{TripID: tripID}
	var buyInS, buyOutS, winLossS, rollingS, commissionS, expensesS string

	err := s.pool.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(buy_in), 0)::TEXT,
			COALESCE(SUM(buy_out), 0)::TEXT,
			COALESCE(SUM(win_loss), 0)::TEXT,
			COALESCE(SUM(rolling_amount), 0)::TEXT,
			COALESCE(SUM(rolling_commission), 0)::TEXT,
			COUNT(*),
			(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE trip_id = $1)::TEXT
		 FROM trip_customers WHERE trip_id = $1`, tripID).
		Scan(&buyInS, &buyOutS, &winLossS, &rollingS, &commissionS,
			&totals.CustomerCount, &expensesS)
	if err != nil {
		return model.TripTotals{}, fmt.Errorf("trip totals %s: %w", tripID, err)
	}

	totals.TotalBuyIn, _ = decimal.NewFromString(buyInS)
	totals.TotalBuyOut, _ = decimal.NewFromString(buyOutS)
	totals.TotalWinLoss, _ = decimal.NewFromString(winLossS)
	totals.TotalRolling, _ = decimal.NewFromString(rollingS)
	totals.TotalRollingCommission, _ = decimal.NewFromString(commissionS)
	totals.TotalExpenses, _ = decimal.NewFromString(expensesS)
	return totals, nil
}

// --- Helpers ---

func (s *PostgresStore) tripExists(ctx context.Context, tripID string) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)`, tripID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("trip %s: %w", tripID, ErrNotFound)
	}
	return nil
}

// execOne runs a statement that must affect exactly one row.
func (s *PostgresStore) execOne(ctx context.Context, what, sql string, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err, what)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// mapErr translates driver errors into store sentinels.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", what, ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", what, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTripCustomer(row rowScanner) (*model.TripCustomer, error) {
	var tc model.TripCustomer
	var buyInS, buyOutS, winLossS, rollingS, commissionS string

	if err := row.Scan(&tc.TripID, &tc.CustomerID, &tc.CustomerName,
		&buyInS, &buyOutS, &winLossS, &rollingS, &commissionS, &tc.UpdatedAt); err != nil {
		return nil, err
	}

	tc.BuyIn, _ = decimal.NewFromString(buyInS)
	tc.BuyOut, _ = decimal.NewFromString(buyOutS)
	tc.WinLoss, _ = decimal.NewFromString(winLossS)
	tc.RollingAmount, _ = decimal.NewFromString(rollingS)
	tc.RollingCommission, _ = decimal.NewFromString(commissionS)
	return &tc, nil
}
