package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samandr77/microservices/claims/pkg/config"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := config.New("does-not-exist.env")
	require.NoError(t, err)

	require.Equal(t, 1500*time.Millisecond, cfg.Store.SingleDelay)
	require.Equal(t, 2*time.Second, cfg.Store.BatchDelay)
	require.Equal(t, "America/Argentina/Buenos_Aires", cfg.Ledger.Timezone)
	require.True(t, cfg.Ledger.RequireTechnicianForProgress)
	require.Len(t, cfg.Ledger.Technicians, 10)
	require.Contains(t, cfg.Ledger.ClaimTypes, "Sin Señal Cable")
	require.Equal(t, 0, cfg.Sheets.RetryMax)
}

func TestNew_Env(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STORE_SINGLE_DELAY", "10ms")
	t.Setenv("LEDGER_TECHNICIANS", "Ana,Beto")
	t.Setenv("LEDGER_REQUIRE_TECHNICIAN_FOR_PROGRESS", "false")

	cfg, err := config.New("does-not-exist.env")
	require.NoError(t, err)

	require.Equal(t, "memory", cfg.Store.Backend)
	require.Equal(t, 10*time.Millisecond, cfg.Store.SingleDelay)
	require.Equal(t, []string{"Ana", "Beto"}, cfg.Ledger.Technicians)
	require.False(t, cfg.Ledger.RequireTechnicianForProgress)
}
