package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func runHashPassword(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"hash-password"}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		_ = hashPasswordCmd.Flags().Set("cost", "0")
		hashPasswordCmd.Flags().Lookup("cost").Changed = false
	})
	require.NoError(t, rootCmd.Execute())
	return strings.TrimSpace(out.String())
}

func TestHashPasswordUsesConfiguredCost(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "5")

	hash := runHashPassword(t, "s3cret")
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestHashPasswordCostFlagOverridesConfig(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "5")

	hash := runHashPassword(t, "--cost", "4", "s3cret")
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
