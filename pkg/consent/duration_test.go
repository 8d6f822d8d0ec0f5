package consent_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credentis/credentis/pkg/consent"
)

func TestParseRetention(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		duration string
		want     time.Time
		wantErr  bool
	}{
		{name: "days", duration: "90d", want: from.AddDate(0, 0, 90)},
		{name: "months", duration: "6m", want: from.AddDate(0, 6, 0)},
		{name: "years", duration: "1y", want: from.AddDate(1, 0, 0)},
		{name: "single day", duration: "1d", want: from.AddDate(0, 0, 1)},
		{name: "empty", duration: "", wantErr: true},
		{name: "missing unit", duration: "90", wantErr: true},
		{name: "unknown unit", duration: "90w", wantErr: true},
		{name: "negative count", duration: "-5d", wantErr: true},
		{name: "unit before count", duration: "d90", wantErr: true},
		{name: "trailing junk", duration: "90d extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := consent.ParseRetention(tt.duration, from)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
