package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveMutation(t *testing.T) {
	success := TaskMutations.WithLabelValues("metrics_test", StatusSuccess)
	failure := TaskMutations.WithLabelValues("metrics_test", StatusError)
	beforeOK, beforeErr := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	ObserveMutation("metrics_test", nil)
	ObserveMutation("metrics_test", nil)
	ObserveMutation("metrics_test", errors.New("boom"))

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(failure))
}

func TestObserveAuth(t *testing.T) {
	failure := AuthEvents.WithLabelValues("metrics_test", StatusError)
	before := testutil.ToFloat64(failure)

	ObserveAuth("metrics_test", errors.New("nope"))

	assert.Equal(t, before+1, testutil.ToFloat64(failure))
}
