package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitTrim(" a ; ;b c;", ";"))
	assert.Nil(t, SplitTrim("", ";"))
	assert.Nil(t, SplitTrim(" ; ", ";"))
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"Office", "", "sensor.h"}, Fields(" Office || sensor.h ", "|"))
	assert.Equal(t, []string{""}, Fields("", "|"))
}
