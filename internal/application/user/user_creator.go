package user

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Notifier is told about users created for runs that asked for notifications.
type Notifier interface {
	UserCreated(ctx context.Context, userID string, record domain.ImportRecord) error
}

// LogNotifier records creation notices in the log. It stands in for a mail
// or messaging integration.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) UserCreated(_ context.Context, userID string, record domain.ImportRecord) error {
	n.Logger.Info("user created notification",
		zap.String("user_id", userID),
		zap.String("email", record.Email),
	)
	return nil
}

// Creator turns import records into identity-store users. Username
// allocation and the create call happen under one lock, so two records with
// the same name can never both observe a free username.
type Creator struct {
	store   domain.IdentityStore
	limiter *rate.Limiter
	logger  *zap.Logger

	mu sync.Mutex
}

type CreatorOption func(*Creator)

// WithCreateRateLimit throttles identity-store creations. Zero or negative
// disables throttling.
func WithCreateRateLimit(perSecond float64) CreatorOption {
	return func(c *Creator) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func NewCreator(store domain.IdentityStore, logger *zap.Logger, opts ...CreatorOption) *Creator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Creator{store: store, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create checks the email, allocates a username and creates the user.
// Failures come back as *domain.CreationError; they are logged here and never
// fatal to the caller.
func (c *Creator) Create(ctx context.Context, record domain.ImportRecord) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()

	if err := domain.ValidateEmail(record.Email); err != nil {
		return "", c.fail(record, "", err, start)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", c.fail(record, "", err, start)
		}
	}

	username, err := domain.AllocateUsername(ctx, domain.BaseUsername(record.FirstName, record.LastName), c.store)
	if err != nil {
		return "", c.fail(record, "", err, start)
	}

	userID, err := c.store.CreateUser(ctx, domain.CreateUserInput{
		Username:       username,
		Email:          record.Email,
		FirstName:      record.FirstName,
		LastName:       record.LastName,
		Roles:          append([]string(nil), record.Roles...),
		ActivationDate: record.ActivationDate,
		Enabled:        true,
	})
	if err != nil {
		return "", c.fail(record, username, err, start)
	}

	userCreateDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	c.logger.Debug("user created",
		zap.String("user_id", userID),
		zap.String("username", username),
		zap.String("email", record.Email),
	)
	return userID, nil
}

func (c *Creator) fail(record domain.ImportRecord, username string, err error, start time.Time) error {
	userCreateDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())

	creationErr := &domain.CreationError{
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Username:  username,
		Email:     record.Email,
		Err:       err,
	}
	c.logger.Error("could not create user",
		zap.String("first_name", record.FirstName),
		zap.String("last_name", record.LastName),
		zap.String("username", username),
		zap.String("email", record.Email),
		zap.Bool("conflict", errors.Is(err, domain.ErrConflict)),
		zap.Error(err),
	)
	return creationErr
}
