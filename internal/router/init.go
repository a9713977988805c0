package router

import (
	"github.com/oksasatya/karaoke-social-api/internal/application"
	"github.com/oksasatya/karaoke-social-api/internal/container"
	"github.com/oksasatya/karaoke-social-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/karaoke-social-api/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/karaoke-social-api/internal/interface/http"
	"github.com/oksasatya/karaoke-social-api/internal/router/modules"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
	tpl "github.com/oksasatya/karaoke-social-api/pkg/mailer/templates"
)

// BuildStores picks the repositories for the configured storage driver and
// registers them in the container.
func BuildStores() application.Stores {
	if s := container.GetStores(); s != nil {
		return *s
	}
	var stores application.Stores
	if container.GetConfig().UseMemoryStore() {
		st := memory.NewStore()
		stores = application.Stores{Tx: st, Users: st.Users(), Songs: st.Songs(), Gifts: st.Gifts(), Awards: st.Awards()}
	} else {
		pool := container.GetPGPool()
		stores = application.Stores{
			Tx:     pginfra.NewTransactor(pool),
			Users:  pginfra.NewUserRepository(pool),
			Songs:  pginfra.NewSongRepository(pool),
			Gifts:  pginfra.NewGiftRepository(pool),
			Awards: pginfra.NewPointAwardRepository(pool),
		}
	}
	container.SetStores(stores)
	return stores
}

// Services is every application service the HTTP modules need.
type Services struct {
	Users *application.UserService
	Songs *application.SongService
	Gifts *application.GiftService
}

func buildServices(stores application.Stores) Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()

	notify := application.NewNotifier(container.Publisher(), cfg, logger)
	points := &application.Points{Awards: stores.Awards, Redis: rdb, Notify: notify, Logger: logger}

	users := application.NewUserService(stores, container.GetJWT(), rdb, logger)
	users.GCS, users.GCSBucket = container.GetGCS(), cfg.GCSBucket
	users.ES, users.ESUsersIndex = container.GetES(), cfg.ESUsersIndex
	users.Notify, users.Points = notify, points
	users.StartingCoins = cfg.StartingCoins
	users.PresenceWindow = cfg.PresenceWindow
	users.OnlineListSize = cfg.OnlineListSize
	users.LeaderboardSize = cfg.LeaderboardSize

	songs := application.NewSongService(stores, points, logger)
	songs.GCS, songs.GCSBucket = container.GetGCS(), cfg.GCSBucket
	songs.ES, songs.ESSongsIndex = container.GetES(), cfg.ESSongsIndex

	gifts := application.NewGiftService(stores, points, notify, rdb, logger)
	gifts.GCS, gifts.GCSBucket = container.GetGCS(), cfg.GCSBucket

	return Services{Users: users, Songs: songs, Gifts: gifts}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	stores := BuildStores()
	svc := buildServices(stores)

	userHandler := handlers.NewUserHandler(svc.Users, logger, cfg.CookieDomain, cfg.CookieSecure)
	authHandler := handlers.NewAuthHandler(svc.Users, logger, cfg)
	authHandler.Geo = helpers.CachedGeoResolver{Rdb: container.GetRedis(), Inner: tpl.IPAPIResolver{}}
	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewSongModule(handlers.NewSongHandler(svc.Songs, logger), userHandler, container.GetJWT(), stores.Users))
	r.Add(modules.NewGiftModule(handlers.NewGiftHandler(svc.Gifts, logger), container.GetJWT(), stores.Users))
	r.AddIf(cfg.DebugMetricsEnabled, func() Module { return modules.NewDebugModule() })
}
