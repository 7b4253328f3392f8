package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/events"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/storage"
	"github.com/skillswap/swap-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	LogLevel       slog.Level
	DefaultTimeout time.Duration

	// MaintenanceInterval drives the notification expiry sweep; zero
	// disables the loop.
	MaintenanceInterval time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	images    storage.ImageStore
	config    ServiceManagerConfig

	// Service instances
	userService         UserService
	skillService        SkillService
	swapService         SwapService
	feedbackService     FeedbackService
	notificationService NotificationService
	reportService       ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	cancelLoop  context.CancelFunc
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, images storage.ImageStore, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		images:    images,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, images storage.ImageStore) ServiceManager {
	config := ServiceManagerConfig{
		LogLevel:            slog.LevelInfo,
		DefaultTimeout:      30 * time.Second,
		MaintenanceInterval: 15 * time.Minute,
	}
	return NewServiceManager(db, repo, logger, validator, publisher, images, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.userService = NewUserService(sm.repo, sm.db, sm.logger, sm.validator, sm.images)
	sm.skillService = NewSkillService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.swapService = NewSwapService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.feedbackService = NewFeedbackService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.notificationService = NewNotificationService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.reportService = NewReportService(sm.repo, sm.db, sm.logger, sm.validator)

	if sm.config.MaintenanceInterval > 0 {
		loopCtx, cancel := context.WithCancel(context.Background())
		sm.cancelLoop = cancel
		go sm.maintenanceLoop(loopCtx)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// maintenanceLoop periodically deactivates expired notifications.
func (sm *serviceManager) maintenanceLoop(ctx context.Context) {
	ticker := time.NewTicker(sm.config.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, sm.config.DefaultTimeout)
			if _, err := sm.notificationService.DeactivateExpired(sweepCtx); err != nil {
				sm.logger.Error("Notification expiry sweep failed", "error", err)
			}
			cancel()
		}
	}
}

// Service getters

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Skill() SkillService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.skillService
}

func (sm *serviceManager) Swap() SwapService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.swapService
}

func (sm *serviceManager) Feedback() FeedbackService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.feedbackService
}

func (sm *serviceManager) Notification() NotificationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.notificationService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.cancelLoop != nil {
		sm.cancelLoop()
	}
	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	return nil
}
