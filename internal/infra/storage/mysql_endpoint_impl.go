package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	model "go_mock_hub/internal/domain/model/mock_endpoint"
	configs "go_mock_hub/internal/infra/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrDuplicatePath 端点路径唯一索引冲突
var ErrDuplicatePath = errors.New("endpoint path already exists")

type MysqlEndpointStorage struct {
	mysqlClient *gorm.DB
}

// new mysql client
func NewMySQLClient(c *configs.HubConfig) *gorm.DB {
	dsn := c.DatabaseConfig.GetDSN()
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		panic("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err == nil {
		opt := c.DatabaseOptionConfig
		sqlDB.SetMaxIdleConns(opt.MaxIdleConns)
		sqlDB.SetMaxOpenConns(opt.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(opt.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(opt.ConnMaxIdleTime)
	}

	if err := db.AutoMigrate(&model.Endpoint{}, &model.MockRule{}, &model.RequestLog{}); err != nil {
		panic(fmt.Sprintf("failed to migrate schema: %v", err))
	}
	return db
}

func NewMysqlEndpointStorage(mysqlClient *gorm.DB) MySQLEndpointStorageIface {
	return &MysqlEndpointStorage{mysqlClient: mysqlClient}
}

var _ MySQLEndpointStorageIface = (*MysqlEndpointStorage)(nil)

func (s *MysqlEndpointStorage) SaveEndpointToDB(ctx context.Context, endpoint *model.Endpoint) error {
	if err := s.mysqlClient.WithContext(ctx).Create(endpoint).Error; err != nil {
		if isDuplicateKeyErr(err) {
			// 重复路径拒绝创建，不产生任何状态变化
			return fmt.Errorf("path '%s': %w", endpoint.Path, ErrDuplicatePath)
		}
		return fmt.Errorf("failed to save endpoint to mysql: %w", err)
	}
	return nil
}

func (s *MysqlEndpointStorage) UpdateEndpointInDB(ctx context.Context, endpoint *model.Endpoint) error {
	if err := s.mysqlClient.WithContext(ctx).Save(endpoint).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return fmt.Errorf("path '%s': %w", endpoint.Path, ErrDuplicatePath)
		}
		return fmt.Errorf("failed to update endpoint in mysql: %w", err)
	}
	return nil
}

func (s *MysqlEndpointStorage) GetEndpointFromDB(ctx context.Context, endpointID string) (*model.Endpoint, error) {
	endpoint := &model.Endpoint{}
	if err := s.mysqlClient.WithContext(ctx).First(endpoint, "id = ?", endpointID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // 不存在返回显式空值，由调用方转成 404
		}
		return nil, fmt.Errorf("failed to get endpoint from mysql: %w", err)
	}
	return endpoint, nil
}

func (s *MysqlEndpointStorage) GetEndpointByPathFromDB(ctx context.Context, path string) (*model.Endpoint, error) {
	endpoint := &model.Endpoint{}
	if err := s.mysqlClient.WithContext(ctx).First(endpoint, "path = ?", path).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get endpoint by path from mysql: %w", err)
	}
	return endpoint, nil
}

func (s *MysqlEndpointStorage) DeleteEndpointFromDB(ctx context.Context, endpointID string) error {
	// 级联删除规则与日志
	tx := s.mysqlClient.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Delete(&model.MockRule{}, "endpoint_id = ?", endpointID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete rules of endpoint: %w", err)
	}
	if err := tx.Delete(&model.RequestLog{}, "endpoint_id = ?", endpointID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete logs of endpoint: %w", err)
	}
	if err := tx.Delete(&model.Endpoint{}, "id = ?", endpointID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete endpoint from mysql: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *MysqlEndpointStorage) ListEndpointsFromDB(ctx context.Context) ([]*model.Endpoint, error) {
	var endpoints []*model.Endpoint
	if err := s.mysqlClient.WithContext(ctx).Order("created_at ASC").Find(&endpoints).Error; err != nil {
		return nil, fmt.Errorf("failed to list endpoints from mysql: %w", err)
	}
	return endpoints, nil
}

func (s *MysqlEndpointStorage) CountEndpointsInDB(ctx context.Context) (int64, error) {
	var total int64
	if err := s.mysqlClient.WithContext(ctx).Model(&model.Endpoint{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count endpoints in mysql: %w", err)
	}
	return total, nil
}

func (s *MysqlEndpointStorage) SaveRuleToDB(ctx context.Context, rule *model.MockRule) error {
	if err := s.mysqlClient.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to save rule to mysql: %w", err)
	}
	return nil
}

func (s *MysqlEndpointStorage) DeleteRuleFromDB(ctx context.Context, endpointID, ruleID string) error {
	if err := s.mysqlClient.WithContext(ctx).
		Delete(&model.MockRule{}, "id = ? AND endpoint_id = ?", ruleID, endpointID).Error; err != nil {
		return fmt.Errorf("failed to delete rule from mysql: %w", err)
	}
	return nil
}

func (s *MysqlEndpointStorage) GetRuleFromDB(ctx context.Context, ruleID string) (*model.MockRule, error) {
	rule := &model.MockRule{}
	if err := s.mysqlClient.WithContext(ctx).First(rule, "id = ?", ruleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rule from mysql: %w", err)
	}
	return rule, nil
}

func (s *MysqlEndpointStorage) ListRulesByEndpoint(ctx context.Context, endpointID string) ([]*model.MockRule, error) {
	var rules []*model.MockRule
	// created_at 升序即插入顺序，同优先级的平局契约依赖该顺序
	if err := s.mysqlClient.WithContext(ctx).
		Where("endpoint_id = ?", endpointID).
		Order("created_at ASC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list rules from mysql: %w", err)
	}
	return rules, nil
}

func (s *MysqlEndpointStorage) AppendLogToDB(ctx context.Context, log *model.RequestLog) error {
	if err := s.mysqlClient.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to append request log to mysql: %w", err)
	}
	return nil
}

func (s *MysqlEndpointStorage) ListLogsFromDB(ctx context.Context, endpointID string, limit int) ([]*model.RequestLog, error) {
	var logs []*model.RequestLog
	if err := s.mysqlClient.WithContext(ctx).
		Where("endpoint_id = ?", endpointID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list request logs from mysql: %w", err)
	}
	return logs, nil
}

func (s *MysqlEndpointStorage) DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.mysqlClient.WithContext(ctx).Delete(&model.RequestLog{}, "timestamp < ?", cutoff)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge expired request logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func isDuplicateKeyErr(err error) bool {
	return strings.Contains(err.Error(), "Error 1062") || strings.Contains(err.Error(), "Duplicate entry")
}
