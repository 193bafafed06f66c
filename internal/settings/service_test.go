package settings

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rmarasigan/printshop-pos-backend/pkg/db/models"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TerminalSetting{}))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	svc, err := NewService(NewSettingRepository(db), TerminalSettings{
		AutoPrint: true,
		TaxRate:   decimal.Zero,
	})
	require.NoError(t, err)
	return svc
}

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	svc := newTestService(t)

	prefs, err := svc.Get(context.Background(), "T1")
	require.NoError(t, err)
	assert.True(t, prefs.AutoPrint)
	assert.Empty(t, prefs.PrinterName)
	assert.True(t, prefs.TaxRate.IsZero())
}

func TestSaveRoundTrip(t *testing.T) {
	svc := newTestService(t)

	saved, err := svc.Save(context.Background(), "T1", TerminalSettings{
		PrinterName:   "EPSON-TM20",
		AutoPrint:     false,
		TaxRate:       decimal.RequireFromString("0.12"),
		ReceiptFooter: "Thank you!",
	})
	require.NoError(t, err)
	assert.Equal(t, "EPSON-TM20", saved.PrinterName)
	assert.False(t, saved.AutoPrint)
	assert.True(t, saved.TaxRate.Equal(decimal.RequireFromString("0.12")))

	// A second save overwrites per key.
	saved, err = svc.Save(context.Background(), "T1", TerminalSettings{
		PrinterName: "EPSON-TM30",
		AutoPrint:   true,
		TaxRate:     decimal.Zero,
	})
	require.NoError(t, err)
	assert.Equal(t, "EPSON-TM30", saved.PrinterName)
	assert.True(t, saved.AutoPrint)
}

func TestSettingsAreScopedPerTerminal(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Save(context.Background(), "T1", TerminalSettings{PrinterName: "A"})
	require.NoError(t, err)

	other, err := svc.Get(context.Background(), "T2")
	require.NoError(t, err)
	assert.Empty(t, other.PrinterName)
}

func TestSaveRejectsNegativeTaxRate(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Save(context.Background(), "T1", TerminalSettings{TaxRate: decimal.NewFromInt(-1)})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
