package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/repository"
	"github.com/postdeckhq/postdeck/internal/service"
)

type TokenRefreshJob struct {
	sr repository.SocialAccountRepository
	ig service.InstagramService
	tt service.TiktokService
	li service.LinkedinService
	tw service.TwitterService
}

func NewTokenRefreshJob(
	sr repository.SocialAccountRepository,
	ig service.InstagramService,
	tt service.TiktokService,
	li service.LinkedinService,
	tw service.TwitterService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr: sr,
		ig: ig,
		tt: tt,
		li: li,
		tw: tw,
	}
}

// RefreshTokens refreshes every connected account whose token expires within
// the next half hour.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.sr.ListByTimeInterval(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			var err error
			switch acc.Platform {
			case models.PlatformInstagram:
				err = c.ig.RefreshInstagramToken(ctx, acc)
			case models.PlatformTiktok:
				err = c.tt.RefreshTiktokToken(ctx, acc)
			case models.PlatformLinkedin:
				err = c.li.RefreshLinkedinToken(ctx, acc)
			case models.PlatformTwitter:
				err = c.tw.RefreshTwitterToken(ctx, acc)
			}
			if err != nil {
				slog.Info("token refresh failed", "platform", acc.Platform, "account_id", acc.ID)
			}
		}(acc)
	}

	wg.Wait()
}
