//go:build integration

package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"ksrtc-reservation/internal/data/repository"
	"ksrtc-reservation/internal/dto/request"
	"ksrtc-reservation/pkg/database"
	"ksrtc-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runs against a disposable PostgreSQL database:
//
//	TEST_DB_NAME=ksrtc_test go test -tags integration ./internal/usecase/
func openTestDB(t *testing.T) database.PgxIface {
	t.Helper()
	name := os.Getenv("TEST_DB_NAME")
	if name == "" {
		t.Skip("TEST_DB_NAME not set")
	}

	db, err := database.InitDB(utils.DatabaseConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "5432"),
		Name:     name,
		User:     envOr("TEST_DB_USER", "postgres"),
		Password: envOr("TEST_DB_PASS", "postgres"),
		MaxConns: 20,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Exec(context.Background(), string(schema)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// seedSchedule inserts a fresh route, bus, schedule and seats so runs never collide
func seedSchedule(t *testing.T, db database.PgxIface, fare float64, seats ...string) (scheduleID, busID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	routeID, busID, scheduleID := uuid.New(), uuid.New(), uuid.New()
	departure := time.Now().Add(24 * time.Hour).Truncate(time.Minute)

	if _, err := db.Exec(ctx, `INSERT INTO routes (id, source, destination, distance_km) VALUES ($1, 'Thiruvananthapuram', 'Kochi', 205)`, routeID); err != nil {
		t.Fatalf("insert route: %v", err)
	}
	if _, err := db.Exec(ctx, `INSERT INTO buses (id, bus_number, capacity) VALUES ($1, $2, $3)`, busID, "KL-"+busID.String()[:8], len(seats)); err != nil {
		t.Fatalf("insert bus: %v", err)
	}
	if _, err := db.Exec(ctx, `
		INSERT INTO schedules (id, bus_id, route_id, departure_time, arrival_time, fare)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		scheduleID, busID, routeID, departure, departure.Add(5*time.Hour), fare); err != nil {
		t.Fatalf("insert schedule: %v", err)
	}
	for _, seat := range seats {
		if _, err := db.Exec(ctx, `INSERT INTO seats (bus_id, seat_number) VALUES ($1, $2)`, busID, seat); err != nil {
			t.Fatalf("insert seat %s: %v", seat, err)
		}
	}
	return scheduleID, busID
}

func seedCustomer(t *testing.T, db database.PgxIface) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if _, err := db.Exec(context.Background(), `
		INSERT INTO customers (id, name, email, password)
		VALUES ($1, 'Test Rider', $2, 'x')`,
		id, id.String()+"@example.com"); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	return id
}

func TestPostgresOverlappingReservationsExactlyOneWins(t *testing.T) {
	db := openTestDB(t)
	log := zap.NewNop()
	svc := NewReservationService(repository.NewRepository(db, log), database.NewTxManager(db), log)

	scheduleID, busID := seedSchedule(t, db, 120, "A1", "A2", "A3", "A4", "A5")
	partners := []string{"A1", "A2", "A4", "A5"}

	const workers = 16
	customers := make([]uuid.UUID, workers)
	for i := range customers {
		customers[i] = seedCustomer(t, db)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// odd workers list the seats in reverse order
			seats := []string{"A3", partners[i%len(partners)]}
			if i%2 == 1 {
				seats = []string{partners[i%len(partners)], "A3"}
			}
			_, err := svc.ReserveSeats(context.Background(), customers[i], &request.ReserveSeatsRequest{
				ScheduleID: scheduleID.String(),
				Seats:      seats,
			})

			mu.Lock()
			defer mu.Unlock()
			var unavailable *SeatUnavailableError
			switch {
			case err == nil:
				successes++
			case !errors.As(err, &unavailable):
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("losers must fail with SeatUnavailableError, got %v", others)
	}
	if successes != 1 {
		t.Fatalf("expected exactly one winner, got %d", successes)
	}

	var reservations int
	if err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM reservations WHERE schedule_id = $1`, scheduleID).Scan(&reservations); err != nil {
		t.Fatalf("count reservations: %v", err)
	}
	if reservations != 1 {
		t.Fatalf("expected 1 reservation row, got %d", reservations)
	}

	var taken int
	if err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM seats WHERE bus_id = $1 AND NOT is_available`, busID).Scan(&taken); err != nil {
		t.Fatalf("count seats: %v", err)
	}
	if taken != 2 {
		t.Fatalf("expected 2 seats taken, got %d", taken)
	}
}

func TestPostgresRejectsZeroFareSchedule(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	routeID, busID := uuid.New(), uuid.New()
	departure := time.Now().Add(24 * time.Hour)

	if _, err := db.Exec(ctx, `INSERT INTO routes (id, source, destination, distance_km) VALUES ($1, 'Kochi', 'Kozhikode', 190)`, routeID); err != nil {
		t.Fatalf("insert route: %v", err)
	}
	if _, err := db.Exec(ctx, `INSERT INTO buses (id, bus_number, capacity) VALUES ($1, $2, 40)`, busID, "KL-"+busID.String()[:8]); err != nil {
		t.Fatalf("insert bus: %v", err)
	}

	_, err := db.Exec(ctx, `
		INSERT INTO schedules (id, bus_id, route_id, departure_time, arrival_time, fare)
		VALUES ($1, $2, $3, $4, $5, 0)`,
		uuid.New(), busID, routeID, departure, departure.Add(4*time.Hour))
	if err == nil {
		t.Fatalf("a schedule with a zero fare could never be paid for and must be rejected")
	}
}
