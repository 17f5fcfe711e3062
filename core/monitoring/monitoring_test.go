package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recMonitor struct {
	errs []error
	msgs []string
	tags []map[string]string
}

func (r *recMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recMonitor) CaptureMessage(msg string, tags map[string]string) {
	r.msgs = append(r.msgs, msg)
}
func (r *recMonitor) Flush(time.Duration) {}

func TestGlobalMonitor(t *testing.T) {
	rec := &recMonitor{}
	Init(rec)
	t.Cleanup(func() { Init(nil) })

	CaptureException(nil, nil)
	CaptureException(errors.New("boom"), map[string]string{"run_id": "r1"})
	CaptureMessage("unmet demand", nil)

	assert.Len(t, rec.errs, 1)
	assert.Equal(t, "r1", rec.tags[0]["run_id"])
	assert.Equal(t, []string{"unmet demand"}, rec.msgs)
}

func TestRecoverRepanics(t *testing.T) {
	rec := &recMonitor{}
	Init(rec)
	t.Cleanup(func() { Init(nil) })

	assert.PanicsWithValue(t, "bad", func() {
		defer Recover()
		panic("bad")
	})
	assert.Len(t, rec.errs, 1)
	assert.EqualError(t, rec.errs[0], "panic: bad")
}

func TestInitNilRestoresNop(t *testing.T) {
	Init(nil)
	_, ok := Current().(NopMonitor)
	assert.True(t, ok)
}
