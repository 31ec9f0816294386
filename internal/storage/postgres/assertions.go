package postgres

import "github.com/grutesr1/DUSK-test/internal/rusk"

var _ rusk.Cache = (*Store)(nil)
