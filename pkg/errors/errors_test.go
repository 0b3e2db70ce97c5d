package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	base := fmt.Errorf("dial tcp: refused")
	err := Wrap(CodeUVDataError, "failed to fetch conditions", base)

	require.True(t, IsCode(err, CodeUVDataError))
	require.False(t, IsCode(err, CodeInvalidInput))
	require.ErrorIs(t, err, base)
	require.Equal(t, "failed to fetch conditions: dial tcp: refused", err.Error())
}

func TestCodeOfWrappedChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", Wrap(CodeSessionActive, "session already running", nil))
	require.Equal(t, CodeSessionActive, CodeOf(err))
	require.Equal(t, "", CodeOf(fmt.Errorf("plain")))
	require.Equal(t, "", CodeOf(nil))
}
