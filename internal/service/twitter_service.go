package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	config "github.com/postdeckhq/postdeck/configs"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/repository"
	"github.com/postdeckhq/postdeck/internal/transfer"
	"github.com/postdeckhq/postdeck/pkg/utils"
	"golang.org/x/oauth2"
)

const twitterUserInfoURL = "https://api.x.com/2/users/me?user.fields=profile_image_url"

// twitterEndpoint is the X OAuth2 endpoint. The token exchange requires the
// PKCE verifier matching the plain challenge sent on the authorize URL.
var twitterEndpoint = oauth2.Endpoint{
	AuthURL:   "https://x.com/i/oauth2/authorize",
	TokenURL:  "https://api.x.com/2/oauth2/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

type TwitterService interface {
	TwitterCallback(ctx context.Context, code string, userID int64) error
	RefreshTwitterToken(ctx context.Context, acc *models.SocialAccount) error
}

type twitterService struct {
	cfg *config.Config
	sa  repository.SocialAccountRepository
}

func NewTwitterService(cfg *config.Config, sa repository.SocialAccountRepository) TwitterService {
	return &twitterService{
		cfg: cfg,
		sa:  sa,
	}
}

func (s *twitterService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.TwitterClientID,
		ClientSecret: s.cfg.TwitterClientSecret,
		RedirectURL:  s.cfg.TwitterRedirectURI,
		Scopes:       []string{"tweet.read", "users.read", "offline.access"},
		Endpoint:     twitterEndpoint,
	}
}

func (s *twitterService) TwitterCallback(ctx context.Context, code string, userID int64) error {
	var err error

	if code == "" {
		err = errors.New("code or state is empty")
		slog.Info(err.Error())
		return err
	}

	if userID == 0 {
		err = errors.New("User not found")
		slog.Info(err.Error())
		return err
	}

	oauthCfg := s.oauthConfig()

	token, err := oauthCfg.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", "challenge"))
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	userInfo, err := getTwitterUserInfo(oauthCfg.Client(ctx, token))
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefreshToken, err := utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	accountInfo := &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformTwitter,
		AccountID:       userInfo.Data.ID,
		AccountName:     userInfo.Data.Name,
		AccountUsername: userInfo.Data.Username,
		ProfilePicture:  userInfo.Data.ProfileImageURL,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedRefreshToken,
		TokenExpiresAt:  token.Expiry,
	}

	_, err = s.sa.Create(ctx, nil, accountInfo)
	if err != nil {
		return err
	}

	return nil
}

func getTwitterUserInfo(client *http.Client) (*transfer.TwitterUserResponse, error) {
	resp, err := client.Get(twitterUserInfoURL)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("X users endpoint returned non-200 status")
		return nil, errors.New("X users endpoint returned non-200 status")
	}

	var userInfo transfer.TwitterUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &userInfo, nil
}

func (s *twitterService) RefreshTwitterToken(ctx context.Context, acc *models.SocialAccount) error {
	decryptedRefreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	tokenSource := s.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: decryptedRefreshToken})

	token, err := tokenSource.Token()
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = decryptedRefreshToken
	}

	encryptedRefreshToken, err := utils.Encrypt([]byte(refreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	return s.sa.UpdateTokens(ctx, acc.ID, encryptedAccessToken, encryptedRefreshToken, token.Expiry)
}
