package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAsString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", AsString(nil))
	require.Equal(t, "hello", AsString("hello"))
	require.Equal(t, "3.5", AsString(3.5))
	require.Equal(t, "100", AsString(float64(100)))
	require.Equal(t, "42", AsString(int64(42)))
	require.Equal(t, "true", AsString(true))
	require.Equal(t, "2024-03-15", AsString(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)))
}

func TestAsFloat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      any
		want    float64
		wantErr bool
	}{
		{"float64", 3.5, 3.5, false},
		{"int", 7, 7, false},
		{"numeric string", " 12.25 ", 12.25, false},
		{"empty string", "", 0, true},
		{"garbage", "abc", 0, true},
		{"nil", nil, 0, true},
		{"bool", true, 0, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := AsFloat(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestAsTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2024-03-15", "03/15/2024", "03-15-2024", "2024/03/15"} {
		got, err := AsTime(in)
		require.NoError(t, err, in)
		require.True(t, want.Equal(got), in)
	}

	withTime, err := AsTime("2024-03-15T08:30:00")
	require.NoError(t, err)
	require.Equal(t, 8, withTime.Hour())

	_, err = AsTime("15th of March")
	require.Error(t, err)
	_, err = AsTime(nil)
	require.Error(t, err)
}

func TestIsNumeric(t *testing.T) {
	t.Parallel()

	require.True(t, IsNumeric(1.5))
	require.True(t, IsNumeric(int64(3)))
	require.False(t, IsNumeric("1.5"))
	require.False(t, IsNumeric(nil))
}
