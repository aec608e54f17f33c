package migration

import (
	"github.com/smallbiznis/ledgerline/internal/config"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
	"github.com/smallbiznis/ledgerline/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(&invoicedomain.Invoice{}); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoInvoices(conn, cfg)
		}
		return nil
	}),
)
