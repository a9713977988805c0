package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/ledger"
	repo "github.com/oksasatya/karaoke-social-api/internal/domain/repository"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
	tpl "github.com/oksasatya/karaoke-social-api/pkg/mailer/templates"
)

// UserService covers accounts, sessions and the social graph.
type UserService struct {
	Stores        Stores
	JWT           *helpers.JWTManager
	GCS           *storage.Client
	GCSBucket     string
	Redis         *redis.Client
	Logger        *logrus.Logger
	ES            *elasticsearch.Client
	ESUsersIndex  string
	Notify        *Notifier
	Points        *Points
	StartingCoins int64

	PresenceWindow  time.Duration
	OnlineListSize  int
	LeaderboardSize int
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

const sessionTTL = 24 * time.Hour

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewUserService(stores Stores, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *UserService {
	return &UserService{
		Stores:          stores,
		JWT:             jwt,
		Redis:           rdb,
		Logger:          logger,
		StartingCoins:   100,
		PresenceWindow:  5 * time.Minute,
		OnlineListSize:  20,
		LeaderboardSize: 50,
	}
}

type LoginResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Level  int    `json:"level"`
	Points int64  `json:"points"`
	Coins  int64  `json:"coins"`
}

func loginResponse(u *entity.User) *LoginResponse {
	return &LoginResponse{UserID: u.ID, Email: u.Email, Name: u.Name, Level: u.Level, Points: u.Points, Coins: u.Coins}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with the starting coin balance and the user role.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := entity.NewUser(strings.TrimSpace(name), normalizeEmail(email), hash, s.StartingCoins)

	err = s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Stores.Users.Create(ctx, u); err != nil {
			return err
		}
		return s.Stores.Users.AssignRole(ctx, u.ID, entity.RoleUser)
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "coins": u.Coins}).Info("user registered")
	}
	if s.Redis != nil {
		_ = helpers.RedisSetScore(ctx, s.Redis, helpers.KeyLeaderboard, u.ID, 0)
	}
	_ = s.indexUser(ctx, u)
	s.Notify.Welcome(ctx, u)
	return u, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Stores.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"avatar_url": u.AvatarURL,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := helpers.KeySession(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return pair, nil
}

func (s *UserService) tokens(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return loginResponse(u), pair, nil
}

// Refresh rotates the session id and both tokens. With Redis configured the
// refresh token must belong to the current session.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Stores.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, helpers.KeySession(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	sid := uuid.NewString()
	pair, err := s.tokens(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		key := helpers.KeySession(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, sessionTTL)
		_, _ = pipe.Exec(ctx)
	}
	return pair, u.ID, nil
}

// Logout drops the session so outstanding tokens stop working.
func (s *UserService) Logout(ctx context.Context, userID string) {
	if s.Redis == nil || userID == "" {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, helpers.KeySession(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}

// Profile is a user with the social relations expanded to summaries.
type Profile struct {
	User          *entity.User
	Followers     []entity.UserSummary
	Following     []entity.UserSummary
	FavoriteSongs []entity.SongSummary
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.Stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}
	ids := append(append([]string{}, u.Followers...), u.Following...)
	people, err := s.Stores.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	favorites, err := s.Stores.Songs.Summaries(ctx, u.FavoriteSongs)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:          u,
		Followers:     pick(people, u.Followers),
		Following:     pick(people, u.Following),
		FavoriteSongs: favorites,
	}, nil
}

// pick returns the summaries for ids in order, skipping unknown ids.
func pick(all map[string]entity.UserSummary, ids []string) []entity.UserSummary {
	out := make([]entity.UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := all[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

type UpdateProfileInput struct {
	Name      string
	AvatarURL string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	var u *entity.User
	err := s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.Stores.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return orNotFound(err, ErrUserNotFound)
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			u.Name = name
		}
		if in.AvatarURL != "" {
			u.AvatarURL = in.AvatarURL
		}
		return s.Stores.Users.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	s.syncSession(ctx, u)
	_ = s.indexUser(ctx, u)
	return u, nil
}

// syncSession copies display fields into the session hash, keeping its TTL.
func (s *UserService) syncSession(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	key := helpers.KeySession(u.ID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"name":       u.Name,
		"avatar_url": u.AvatarURL,
		"updated_at": nowRFC3339(),
	})
	if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
		s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
	}
}

// UploadAvatar stores the image in GCS and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if _, err := s.Stores.Users.GetByID(ctx, userID); err != nil {
		return "", orNotFound(err, ErrUserNotFound)
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", ErrStorageNotReady
	}
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, helpers.ObjectPath("avatars", userID, filename), contentType, r)
	if err != nil {
		return "", err
	}
	if _, err := s.UpdateProfile(ctx, userID, UpdateProfileInput{AvatarURL: url}); err != nil {
		return "", err
	}
	return url, nil
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"avatar_url": u.AvatarURL,
		"level":      u.Level,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	err := helpers.ESIndexDoc(ctx, s.ES, s.ESUsersIndex, u.ID, doc)
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
	}
	return err
}

// SearchUsers runs a multi_match over name and email. Without Elasticsearch
// it returns an empty list.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]entity.UserSummary, error) {
	if s.ES == nil || s.ESUsersIndex == "" || strings.TrimSpace(q) == "" {
		return []entity.UserSummary{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	ids, err := helpers.ESMultiMatch(ctx, s.ES, s.ESUsersIndex, q, []string{"name^2", "email"}, size)
	if err != nil {
		return nil, err
	}
	people, err := s.Stores.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	return pick(people, ids), nil
}

// FollowResult reports the relation after a toggle.
type FollowResult struct {
	Following      bool
	FollowersCount int
}

// ToggleFollow follows or unfollows target. Both users are locked so the two
// sides of the relation never disagree.
func (s *UserService) ToggleFollow(ctx context.Context, followerID, targetID string) (FollowResult, error) {
	if followerID == targetID {
		return FollowResult{}, entity.ErrSelfFollow
	}
	var res FollowResult
	err := s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		users, err := lockUsers(ctx, s.Stores.Users, followerID, targetID)
		if err != nil {
			return err
		}
		follower, target := users[followerID], users[targetID]
		if follower == nil || target == nil {
			return ErrUserNotFound
		}
		following, err := entity.ToggleFollow(follower, target)
		if err != nil {
			return err
		}
		if err := s.Stores.Users.SetFollow(ctx, follower.ID, target.ID, following); err != nil {
			return err
		}
		res = FollowResult{Following: following, FollowersCount: target.Followers.Len()}
		return nil
	})
	return res, err
}

// ToggleFavoriteSong flips songID in the user's favorites.
func (s *UserService) ToggleFavoriteSong(ctx context.Context, userID, songID string) (bool, error) {
	var favorite bool
	err := s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.Stores.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return orNotFound(err, ErrUserNotFound)
		}
		if _, err := s.Stores.Songs.GetByID(ctx, songID); err != nil {
			return orNotFound(err, ledger.ErrSongNotFound)
		}
		favorite = u.ToggleFavorite(songID)
		return s.Stores.Users.SetFavorite(ctx, u.ID, songID, favorite)
	})
	return favorite, err
}

// TouchPresence marks the user as online now.
func (s *UserService) TouchPresence(ctx context.Context, userID string) {
	if s.Redis == nil || userID == "" {
		return
	}
	_ = helpers.RedisTouchPresence(ctx, s.Redis, userID, time.Now())
}

// Online lists users seen within the presence window, falling back to the
// most recently active accounts when nobody is tracked.
func (s *UserService) Online(ctx context.Context) ([]entity.UserSummary, error) {
	if s.Redis != nil {
		ids, err := helpers.RedisActiveSince(ctx, s.Redis, time.Now().Add(-s.PresenceWindow), s.OnlineListSize)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("presence lookup failed")
		}
		if err == nil && len(ids) > 0 {
			people, err := s.Stores.Users.Summaries(ctx, ids)
			if err != nil {
				return nil, err
			}
			return pick(people, ids), nil
		}
	}
	return s.Stores.Users.Recent(ctx, s.OnlineListSize)
}

// Leaderboard returns the top users by points.
func (s *UserService) Leaderboard(ctx context.Context) ([]entity.UserSummary, error) {
	if s.Redis != nil {
		top, err := helpers.RedisTop(ctx, s.Redis, helpers.KeyLeaderboard, s.LeaderboardSize)
		if err == nil && len(top) > 0 {
			ids := make([]string, 0, len(top))
			for _, z := range top {
				if id, ok := z.Member.(string); ok {
					ids = append(ids, id)
				}
			}
			people, err := s.Stores.Users.Summaries(ctx, ids)
			if err != nil {
				return nil, err
			}
			return pick(people, ids), nil
		}
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("leaderboard lookup failed")
		}
	}
	return s.Stores.Users.TopByPoints(ctx, s.LeaderboardSize)
}

func (s *UserService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.Stores.Users.HasRole(ctx, userID, entity.RoleAdmin)
}

const resetTokenTTL = 30 * time.Minute

// StartPasswordReset issues a reset token for email and mails the link. Unknown
// emails return an empty link and no error so callers cannot enumerate
// accounts.
func (s *UserService) StartPasswordReset(ctx context.Context, email, resetURL string, opts ...tpl.Option) (string, error) {
	u, err := s.Stores.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil || s.Redis == nil {
		if s.Logger != nil {
			s.Logger.WithField("email", email).Info("reset requested for unknown account")
		}
		return "", nil
	}
	tok, err := helpers.GenToken(32)
	if err != nil {
		return "", err
	}
	if err := s.Redis.Set(ctx, helpers.KeyResetToken(tok), u.ID, resetTokenTTL).Err(); err != nil {
		return "", err
	}
	link := resetURL + "?token=" + tok
	opts = append([]tpl.Option{tpl.WithTime(time.Now()), tpl.WithResetURL(link), tpl.WithExpiresIn(resetTokenTTL)}, opts...)
	s.Notify.ForgotPassword(ctx, u, opts...)
	return link, nil
}

// ResetPassword swaps the password of the token's owner and burns the token.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.Redis == nil {
		return ErrResetUnavailable
	}
	uid, err := s.Redis.Get(ctx, helpers.KeyResetToken(token)).Result()
	if err != nil || uid == "" {
		return ErrInvalidResetToken
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Stores.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return orNotFound(err, ErrUserNotFound)
	}
	_ = helpers.RedisDel(ctx, s.Redis, helpers.KeyResetToken(token))
	s.Logout(ctx, uid)
	return nil
}

// PointsHistory lists the user's point awards newest first.
func (s *UserService) PointsHistory(ctx context.Context, userID string, limit int) ([]entity.PointAward, error) {
	if _, err := s.Stores.Users.GetByID(ctx, userID); err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}
	return s.Points.History(ctx, userID, limit)
}
