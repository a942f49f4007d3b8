// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worldcrafter/worldcrafter/pkg/errutil"
)

func TestConnect_InvalidDSN(t *testing.T) {
	_, err := Connect(context.Background(), "this is not a dsn")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")
}
