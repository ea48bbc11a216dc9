package admin

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/modules/gateway"
	"github.com/echoverse/core/internal/pkg/cron"
	"github.com/echoverse/core/internal/pkg/ratelimit"
	"github.com/echoverse/core/internal/pkg/securitylog"
	sessionpkg "github.com/echoverse/core/internal/pkg/session"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *sessionpkg.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.IPBanModel{}))

	audit, err := securitylog.New(filepath.Join(t.TempDir(), "security.log"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { audit.Close() })

	sessions := sessionpkg.NewStore(time.Hour)
	hub := gateway.NewHub(nil, ratelimit.New(nil), zap.NewNop())
	svc := NewService(db, hub, sessions, middleware.NewIPBanList(nil), audit, cron.New())
	return svc, db, sessions
}

func seedUser(t *testing.T, db *gorm.DB, id string, banned bool) *models.UserModel {
	t.Helper()
	u := &models.UserModel{
		Base:     models.Base{ID: id},
		Username: "user-" + id,
		Password: "x",
		Banned:   banned,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestSetBannedUnknownUser(t *testing.T) {
	svc, db, _ := newTestService(t)
	actor := seedUser(t, db, "actor", false)

	err := svc.SetBanned(actor, "no-such-user", true)
	assert.ErrorIs(t, err, errUserNotFound)
}

// Banning a user who is already banned is an idempotent success, not a
// 404. The UPDATE changes nothing, so the driver reports zero affected
// rows; existence has to be decided separately.
func TestSetBannedIsIdempotent(t *testing.T) {
	svc, db, _ := newTestService(t)
	actor := seedUser(t, db, "actor", false)
	seedUser(t, db, "target", true)

	require.NoError(t, svc.SetBanned(actor, "target", true))

	var target models.UserModel
	require.NoError(t, db.First(&target, "id = ?", "target").Error)
	assert.True(t, target.Banned)

	require.NoError(t, svc.SetBanned(actor, "target", false))
	require.NoError(t, svc.SetBanned(actor, "target", false))
	require.NoError(t, db.First(&target, "id = ?", "target").Error)
	assert.False(t, target.Banned)
}

func TestSetBannedKillsLiveSessions(t *testing.T) {
	svc, db, sessions := newTestService(t)
	actor := seedUser(t, db, "actor", false)
	seedUser(t, db, "target", false)

	token := sessions.Create("target")
	require.NotNil(t, sessions.Validate(token))

	require.NoError(t, svc.SetBanned(actor, "target", true))
	assert.Nil(t, sessions.Validate(token))
}

func TestSetRolesNoopToggle(t *testing.T) {
	svc, db, _ := newTestService(t)
	actor := seedUser(t, db, "actor", false)
	seedUser(t, db, "target", false)

	// Setting a flag to the value it already holds must succeed.
	off := false
	require.NoError(t, svc.SetRoles(actor, "target", &RolesDTO{IsAdmin: &off}))

	on := true
	require.NoError(t, svc.SetRoles(actor, "target", &RolesDTO{IsAdmin: &on, IsDeveloper: &on}))

	var target models.UserModel
	require.NoError(t, db.First(&target, "id = ?", "target").Error)
	assert.True(t, target.CanAdmin())
}

func TestSetRolesUnknownUser(t *testing.T) {
	svc, db, _ := newTestService(t)
	actor := seedUser(t, db, "actor", false)

	on := true
	err := svc.SetRoles(actor, "no-such-user", &RolesDTO{IsAdmin: &on})
	assert.ErrorIs(t, err, errUserNotFound)
}
