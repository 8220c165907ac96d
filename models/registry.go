package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/sirupsen/logrus"
)

// Dependencies are the collaborators outside the document store. Nil
// Storage disables profile images; nil Publisher sends mail inline.
type Dependencies struct {
	Sessions      SessionStore
	TokenLifespan time.Duration
	Storage       ObjectStorage
	Mailer        Mailer
	Publisher     NotificationPublisher
}

type Repositories struct {
	Store         docstore.Store
	Clients       *ClientRepository
	Employees     *EmployeeService
	Executives    *Repository[Executive]
	FdEntries     *Repository[FdEntry]
	Insurances    *Repository[Insurance]
	Mediclaims    *Repository[Mediclaim]
	PostalEntries *Repository[PostalEntry]
	PhoneLogs     *Repository[PhoneLog]
	Cheques       *Repository[Cheque]
	Locations     *Repository[Location]
	Areas         *Repository[Area]
	Catalog       *CatalogRepository
	Accounts      *AccountService
	Admin         *AdminDirectory
	Images        *ProfileImageService
	Notifications *NotificationService
}

func NewRepositories(store docstore.Store, deps Dependencies) *Repositories {
	var images *ProfileImageService
	if deps.Storage != nil {
		images = NewProfileImageService(deps.Storage)
	}
	accounts := NewAccountService(store, deps.Sessions, deps.TokenLifespan)
	clients := NewClientRepository(store, images)
	return &Repositories{
		Store:         store,
		Clients:       clients,
		Employees:     NewEmployeeService(store, accounts),
		Executives:    NewRepository[Executive](store, ExecutiveCollection).OrderBy("name"),
		FdEntries:     NewRepository[FdEntry](store, FdEntryCollection),
		Insurances:    NewRepository[Insurance](store, InsuranceCollection),
		Mediclaims:    NewRepository[Mediclaim](store, MediclaimCollection),
		PostalEntries: NewRepository[PostalEntry](store, PostalEntryCollection),
		PhoneLogs:     NewRepository[PhoneLog](store, PhoneLogCollection),
		Cheques:       NewRepository[Cheque](store, ChequeCollection).OrderBy("dueDate"),
		Locations:     NewRepository[Location](store, LocationCollection).OrderBy("name"),
		Areas:         NewRepository[Area](store, AreaCollection).OrderBy("name"),
		Catalog:       NewCatalogRepository(store),
		Accounts:      accounts,
		Admin:         NewAdminDirectory(store),
		Images:        images,
		Notifications: NewNotificationService(store, clients, deps.Mailer, deps.Publisher),
	}
}

// DependenciesFromSettings wires the optional collaborators that are
// configured. Redis must already be connected for shared sessions.
func DependenciesFromSettings(ctx context.Context, settings config.Settings) (Dependencies, error) {
	logger := config.GetLogger()
	deps := Dependencies{TokenLifespan: settings.TokenLifespan}

	if config.GetRedisDB() != nil {
		deps.Sessions = RedisSessionStore{}
	} else {
		logger.WithFields(logrus.Fields{"field": "sessions"}).Warn("redis not connected; sessions are process-local")
		deps.Sessions = NewMemorySessionStore()
	}

	if settings.GCSBucket != "" {
		storage, err := utils.NewGCSStorage(settings.GCSBucket, settings.GCSPublicBaseURL)
		if err != nil {
			return deps, err
		}
		deps.Storage = storage
	}

	if settings.SMTP.Configured() {
		deps.Mailer = &utils.SMTPMailer{
			Host:     settings.SMTP.Host,
			Port:     settings.SMTP.Port,
			Username: settings.SMTP.Username,
			Password: settings.SMTP.Password,
			From:     settings.SMTP.From,
		}
	}

	if config.QueueNotifications() {
		client, err := config.GetPubSubClient(ctx)
		if err != nil {
			return deps, fmt.Errorf("pubsub: %w", err)
		}
		if _, err := config.CreateTopicIfNotExists(ctx, client, settings.NotifyTopic); err != nil {
			return deps, err
		}
		deps.Publisher = PubSubPublisher{Topic: settings.NotifyTopic}
	}
	return deps, nil
}
