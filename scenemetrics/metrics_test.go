package scenemetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	Register()
	Register()
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(batches.WithLabelValues(OpObjects, ResultAborted))
	RecordBatch(OpObjects, ResultAborted)
	assert.Equal(t, before+1, testutil.ToFloat64(batches.WithLabelValues(OpObjects, ResultAborted)))

	before = testutil.ToFloat64(disposed.WithLabelValues(OpEnlivables))
	RecordDisposed(OpEnlivables, 3)
	RecordDisposed(OpEnlivables, 0)
	assert.Equal(t, before+3, testutil.ToFloat64(disposed.WithLabelValues(OpEnlivables)))

	before = testutil.ToFloat64(imageLoads.WithLabelValues(ResultEmpty))
	RecordImageLoad(ResultEmpty, 0)
	RecordImageLoad(ResultOK, 12*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(imageLoads.WithLabelValues(ResultEmpty)))

	RecordObject("Rect")
	assert.GreaterOrEqual(t, testutil.ToFloat64(objects.WithLabelValues("Rect")), 1.0)
}
