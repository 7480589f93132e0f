package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/service/mocks"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestDue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		interval int
		updated  time.Time
		want     bool
	}{
		{name: "manual never refreshes", interval: forms.IntervalManual, updated: now.AddDate(-1, 0, 0), want: false},
		{name: "hourly not yet due", interval: forms.IntervalHourly, updated: now.Add(-59 * time.Minute), want: false},
		{name: "hourly exactly due", interval: forms.IntervalHourly, updated: now.Add(-time.Hour), want: true},
		{name: "daily overdue", interval: forms.IntervalDaily, updated: now.Add(-48 * time.Hour), want: true},
		{name: "updated in the future", interval: forms.IntervalHourly, updated: now.Add(time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Due(forms.SyncSettings{UpdateInterval: tt.interval}, tt.updated, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func form(id string, interval int) *forms.Form {
	f := forms.New(id)
	f.Sync.UpdateInterval = interval
	return f
}

func TestRunOnce(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	const (
		contactURL = "https://remote.example/jsonapi/webforms/contact"
		surveyURL  = "https://remote.example/jsonapi/webforms/survey"
		pollURL    = "https://remote.example/jsonapi/webforms/poll"
		brokenURL  = "https://broken.example/jsonapi/webforms/x"
	)
	records := []*provenance.Record{
		{LocalFormID: "contact", SourceURL: contactURL, UpdatedAt: now.Add(-25 * time.Hour)},
		{LocalFormID: "contact_00", SourceURL: contactURL, UpdatedAt: now.Add(-25 * time.Hour)},
		{LocalFormID: "gone", SourceURL: "https://remote.example/jsonapi/webforms/gone", UpdatedAt: now.AddDate(0, -1, 0)},
		{LocalFormID: "poll", SourceURL: pollURL, UpdatedAt: now.Add(-10 * time.Minute)},
		{LocalFormID: "survey", SourceURL: surveyURL, UpdatedAt: now.AddDate(0, 0, -8)},
		{LocalFormID: "x", SourceURL: brokenURL, UpdatedAt: now.Add(-2 * time.Hour)},
	}

	svc := mocks.NewMockFormSyncService(ctrl)
	svc.EXPECT().ListImported(gomock.Any()).Return(records, nil)
	svc.EXPECT().GetForm(gomock.Any(), "contact").Return(form("contact", forms.IntervalDaily), nil)
	svc.EXPECT().GetForm(gomock.Any(), "contact_00").Return(form("contact_00", forms.IntervalDaily), nil)
	svc.EXPECT().GetForm(gomock.Any(), "gone").Return(nil, forms.ErrNotFound)
	svc.EXPECT().GetForm(gomock.Any(), "poll").Return(form("poll", forms.IntervalHourly), nil)
	svc.EXPECT().GetForm(gomock.Any(), "survey").Return(form("survey", forms.IntervalWeekly), nil)
	svc.EXPECT().GetForm(gomock.Any(), "x").Return(form("x", forms.IntervalHourly), nil)

	// contact is imported once even though two local forms came from it
	svc.EXPECT().Import(gomock.Any(), contactURL).Return(&importer.Result{}, nil).Times(1)
	svc.EXPECT().Import(gomock.Any(), surveyURL).Return(&importer.Result{}, nil).Times(1)
	svc.EXPECT().Import(gomock.Any(), brokenURL).Return(nil, &importer.Error{
		Phase: importer.PhaseFetching, URL: brokenURL, Err: importer.ErrFetch,
	}).Times(1)

	c := New(svc, WithClock(testingclock.NewFakePassiveClock(now)), WithConcurrency(3))
	summary, err := c.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Checked: 6, Refreshed: 2, Failed: 1}, summary)
}

func TestRunOnceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(m *mocks.MockFormSyncService)
	}{
		{
			name: "listing fails",
			setup: func(m *mocks.MockFormSyncService) {
				m.EXPECT().ListImported(gomock.Any()).Return(nil, errors.New("connection refused"))
			},
		},
		{
			name: "form lookup fails",
			setup: func(m *mocks.MockFormSyncService) {
				m.EXPECT().ListImported(gomock.Any()).Return([]*provenance.Record{{LocalFormID: "contact"}}, nil)
				m.EXPECT().GetForm(gomock.Any(), "contact").Return(nil, errors.New("connection refused"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockFormSyncService(ctrl)
			tt.setup(svc)

			_, err := New(svc).RunOnce(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "connection refused")
		})
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	passed := make(chan struct{})
	svc := mocks.NewMockFormSyncService(ctrl)
	svc.EXPECT().ListImported(gomock.Any()).DoAndReturn(func(context.Context) ([]*provenance.Record, error) {
		close(passed)
		return nil, nil
	})

	c := New(svc, WithInterval(time.Hour), WithJitter(0))
	require.NoError(t, c.Stop(), "stop before start is a no-op")

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()

	select {
	case <-passed:
	case <-time.After(5 * time.Second):
		t.Fatal("initial refresh pass did not run")
	}

	require.NoError(t, c.Stop())
	require.NoError(t, <-errCh)
	assert.Error(t, c.Start(context.Background()), "a stopped coordinator cannot be restarted")
}

func TestNextInterval(t *testing.T) {
	t.Parallel()

	c := New(nil, WithInterval(time.Minute), WithJitter(10*time.Second)).(*coordinator)
	for range 100 {
		d := c.nextInterval()
		assert.GreaterOrEqual(t, d, 50*time.Second)
		assert.Less(t, d, 70*time.Second)
	}

	c = New(nil, WithInterval(time.Minute), WithJitter(0)).(*coordinator)
	assert.Equal(t, time.Minute, c.nextInterval())
}
