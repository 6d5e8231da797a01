// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package legacy

import (
	"testing"

	"github.com/westerndigitalcorporation/floe/pkg/testutil"
)

func TestMain(m *testing.M) {
	testutil.TestMain(m)
}
