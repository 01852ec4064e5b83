package entity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samandr77/microservices/claims/internal/entity"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    entity.Status
		wantErr error
	}{
		{in: "Pending", want: entity.StatusPending},
		{in: " in progress ", want: entity.StatusInProgress},
		{in: "RESOLVED", want: entity.StatusResolved},
		{in: "Pendiente", want: entity.StatusPending},
		{in: "En curso", want: entity.StatusInProgress},
		{in: "Resuelto", want: entity.StatusResolved},
		{in: "closed", wantErr: entity.ErrInvalidArgument},
	}

	for _, tt := range tests {
		got, err := entity.ParseStatus(tt.in)
		if tt.wantErr != nil {
			require.ErrorIs(t, err, tt.wantErr)
			continue
		}

		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestStatus_Active(t *testing.T) {
	t.Parallel()

	require.True(t, entity.StatusPending.Active())
	require.True(t, entity.StatusInProgress.Active())
	require.False(t, entity.StatusResolved.Active())
	require.False(t, entity.Status("Closed").IsValid())
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	c := entity.NewCatalog([]string{"Juan", " Maxi ", ""}, []string{"Reconexion"})

	name, ok := c.Technician("maxi")
	require.True(t, ok)
	require.Equal(t, "Maxi", name)

	_, ok = c.Technician("Pedro")
	require.False(t, ok)

	typ, ok := c.ClaimType("RECONEXION")
	require.True(t, ok)
	require.Equal(t, "Reconexion", typ)
	require.Len(t, c.Technicians(), 2)
}
