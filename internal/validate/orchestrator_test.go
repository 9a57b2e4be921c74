package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/rorv/internal/domain"
)

func finding(record string) domain.Finding {
	return domain.Finding{Record: record, Status: domain.StatusDuplicate}
}

func newSpy(name string, findings ...domain.Finding) *spyValidator {
	return &spyValidator{
		desc:     Descriptor{Name: name, Formats: domain.FormatBoth, Fields: []string{domain.ColumnRecord}},
		findings: findings,
	}
}

func TestOrchestrator_GeoNamesValidatorNeverRunsWithoutCredentials(t *testing.T) {
	spy := newSpy("geo")
	spy.desc.NeedsGeoNames = true
	reg, err := NewRegistry(spy)
	require.NoError(t, err)
	recorder := newFakeRecorder()

	o := NewOrchestrator(reg, &fakeWriter{}, nil, recorder, &recordingLogger{})
	vc := NewContext(Inputs{Tabular: []domain.Record{csvRow(2, nil)}})
	result, err := o.Run(context.Background(), nil, vc)

	require.NoError(t, err)
	assert.False(t, spy.called)
	require.Len(t, result.Reports, 1)
	assert.True(t, result.Reports[0].Skipped)
	assert.Contains(t, recorder.skipped["geo"], "geonames")
}

func TestOrchestrator_ExplicitRequestWithMissingPrerequisite(t *testing.T) {
	integrityCheck := newSpy("integrity")
	integrityCheck.desc.NeedsBothInputs = true
	other := newSpy("other", finding("row 2"))
	reg, err := NewRegistry(integrityCheck, other)
	require.NoError(t, err)
	writer := &fakeWriter{}

	o := NewOrchestrator(reg, writer, nil, nil, nil)
	vc := NewContext(Inputs{Tabular: []domain.Record{csvRow(2, nil)}})
	_, err = o.Run(context.Background(), []string{"integrity", "other"}, vc)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "integrity", cfgErr.Validator)
	assert.Contains(t, cfgErr.Reason, "both")
	assert.False(t, integrityCheck.called)
	assert.True(t, other.called, "other validators still run")
	assert.Len(t, writer.reports, 1)
}

func TestOrchestrator_AllSkipsMissingPrerequisiteQuietly(t *testing.T) {
	integrityCheck := newSpy("integrity")
	integrityCheck.desc.NeedsBothInputs = true
	reg, err := NewRegistry(integrityCheck, newSpy("other"))
	require.NoError(t, err)
	logger := &recordingLogger{}

	o := NewOrchestrator(reg, &fakeWriter{}, nil, nil, logger)
	_, err = o.Run(context.Background(), []string{AllValidators}, NewContext(Inputs{Tabular: []domain.Record{}}))

	require.NoError(t, err)
	assert.Contains(t, logger.infos, "skipping validator")
}

func TestOrchestrator_UnknownNameIsSkipped(t *testing.T) {
	spy := newSpy("known")
	reg, err := NewRegistry(spy)
	require.NoError(t, err)
	logger := &recordingLogger{}

	o := NewOrchestrator(reg, &fakeWriter{}, nil, nil, logger)
	_, err = o.Run(context.Background(), []string{"nope", "known", "known"}, NewContext(Inputs{Tabular: []domain.Record{}}))

	require.NoError(t, err)
	assert.True(t, spy.called)
	assert.Equal(t, []string{"unknown validator, skipping"}, logger.warns)
}

func TestOrchestrator_ReportsOnlyWithFindings(t *testing.T) {
	clean := newSpy("clean")
	dirty := newSpy("dirty-check", finding("row 2"), finding("row 3"))
	reg, err := NewRegistry(clean, dirty)
	require.NoError(t, err)
	writer := &fakeWriter{}
	locker := &fakeLocker{}
	recorder := newFakeRecorder()

	o := NewOrchestrator(reg, writer, locker, recorder, nil)
	result, err := o.Run(context.Background(), nil, NewContext(Inputs{Tabular: []domain.Record{}}))

	require.NoError(t, err)
	require.Len(t, writer.reports, 1)
	assert.Equal(t, "dirty_check.csv", writer.reports[0].filename)
	assert.Equal(t, 2, result.TotalFindings())
	assert.Equal(t, "out/dirty_check.csv", result.Reports[1].Path)
	assert.Empty(t, result.Reports[0].Path)
	assert.True(t, locker.locked)
	assert.True(t, locker.unlocked)
	assert.Equal(t, map[string]int{"clean": 0, "dirty-check": 2}, recorder.ran)
}

func TestOrchestrator_LockFailure(t *testing.T) {
	spy := newSpy("x")
	reg, err := NewRegistry(spy)
	require.NoError(t, err)
	lockErr := errors.New("already locked")

	o := NewOrchestrator(reg, &fakeWriter{}, &fakeLocker{err: lockErr}, nil, nil)
	_, err = o.Run(context.Background(), nil, NewContext(Inputs{Tabular: []domain.Record{}}))

	require.ErrorIs(t, err, lockErr)
	assert.False(t, spy.called)
}

func TestOrchestrator_RunErrorDoesNotStopOthers(t *testing.T) {
	broken := newSpy("broken")
	broken.err = errors.New("boom")
	ok := newSpy("ok", finding("row 2"))
	reg, err := NewRegistry(broken, ok)
	require.NoError(t, err)
	writer := &fakeWriter{}

	o := NewOrchestrator(reg, writer, nil, nil, nil)
	_, err = o.Run(context.Background(), nil, NewContext(Inputs{Tabular: []domain.Record{}}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "running broken")
	var cfgErr *ConfigError
	assert.False(t, errors.As(err, &cfgErr))
	assert.True(t, ok.called)
	assert.Len(t, writer.reports, 1)
}

func TestOrchestrator_EndToEndURLDuplicates(t *testing.T) {
	tests := []struct {
		name string
		rows int
		want int
	}{
		{"two rows", 2, 1},
		{"three rows", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []domain.Record
			for i := 0; i < tt.rows; i++ {
				rows = append(rows, csvRow(i+2, map[string]string{
					domain.FieldIssueURL:    issue(i + 1),
					domain.FieldNameDisplay: []string{"Alpha Works", "Zebra Holdings", "Quantum Lab"}[i],
					domain.FieldWebsite:     []string{"https://www.shared.org", "http://shared.org/", "https://SHARED.org/en"}[i],
				}))
			}
			writer := &fakeWriter{}

			o := NewOrchestrator(Default(), writer, nil, nil, nil)
			_, err := o.Run(context.Background(), []string{"in-release-duplicates"}, NewContext(Inputs{Tabular: rows}))

			require.NoError(t, err)
			rep, ok := writer.report("in_release_duplicates.csv")
			require.True(t, ok)
			require.Len(t, rep.findings, tt.want)
			for _, f := range rep.findings {
				assert.Equal(t, "url", f.Column(ColumnMatchType))
				assert.Equal(t, "100", f.Column(ColumnScore))
			}
		})
	}
}
