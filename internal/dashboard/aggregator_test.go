package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feelsunbreeze/spps_tui/internal/models"
)

type fakeBackend struct {
	stats    models.DashboardStats
	dist     models.PredictionStatistics
	statsErr error
	distErr  error
	// release blocks both calls until each has started.
	release chan struct{}
	started chan struct{}
}

func (f *fakeBackend) wait() {
	if f.started == nil {
		return
	}
	f.started <- struct{}{}
	<-f.release
}

func (f *fakeBackend) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	f.wait()
	return f.stats, f.statsErr
}

func (f *fakeBackend) PredictionStatistics(ctx context.Context) (models.PredictionStatistics, error) {
	f.wait()
	return f.dist, f.distErr
}

func TestLoadIssuesBothRequestsConcurrently(t *testing.T) {
	fb := &fakeBackend{
		stats:   models.DashboardStats{TotalStudents: 12, AtRiskStudents: 3},
		dist:    models.PredictionStatistics{RiskPercentages: map[models.RiskLevel]float64{models.RiskAtRisk: 25}},
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}

	done := make(chan struct{})
	var sum Summary
	var err error
	go func() {
		sum, err = NewAggregator(fb, nil).Load(context.Background())
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-fb.started:
		case <-time.After(2 * time.Second):
			t.Fatal("requests were not issued concurrently")
		}
	}
	select {
	case <-done:
		t.Fatal("Load() returned before both requests settled")
	default:
	}
	close(fb.release)
	<-done

	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if sum.Stats.TotalStudents != 12 {
		t.Errorf("Stats = %+v", sum.Stats)
	}
	shares := sum.Shares()
	if shares[2].Level != models.RiskAtRisk || shares[2].Percent != 25 {
		t.Errorf("Shares() = %+v", shares)
	}
	if shares[0].Percent != 0 {
		t.Errorf("missing percentage = %v, want 0", shares[0].Percent)
	}
}

func TestLoadFailsWhole(t *testing.T) {
	cause := errors.New("statistics unavailable")
	tests := []struct {
		name string
		fb   *fakeBackend
	}{
		{"dashboard fails", &fakeBackend{statsErr: cause}},
		{"statistics fail", &fakeBackend{stats: models.DashboardStats{TotalStudents: 4}, distErr: cause}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, err := NewAggregator(tt.fb, nil).Load(context.Background())
			if !errors.Is(err, cause) {
				t.Errorf("Load() error = %v, want %v", err, cause)
			}
			if sum.Stats.TotalStudents != 0 {
				t.Errorf("partial summary returned: %+v", sum)
			}
		})
	}
}

func TestCardsDefaultToZero(t *testing.T) {
	cards := Summary{}.Cards()
	if len(cards) != 4 {
		t.Fatalf("Cards() = %+v", cards)
	}
	for _, c := range cards {
		if c.Value != 0 {
			t.Errorf("%s = %d, want 0", c.Label, c.Value)
		}
	}
}
