package service

import (
	"fmt"
	"strings"

	"github.com/postdeckhq/postdeck/internal/transfer"
)

// Canned assistant answers, matched by ordered case-insensitive substring
// rules. The order is load-bearing: content-ideas outranks caption-writing,
// which outranks hashtags, posting-time and strategy, with a catchall last.

type intentRule struct {
	name     string
	keywords []string
	answer   func(ctx *transfer.BusinessContext) string
}

var intentRules = []intentRule{
	{
		name:     "content-ideas",
		keywords: []string{"content idea", "content ideas", "what to post", "post ideas", "ideas for"},
		answer: func(ctx *transfer.BusinessContext) string {
			return fmt.Sprintf(`Here are some content ideas for %s:

1. Behind-the-scenes: show how your product or service comes together. People trust what they can see.
2. Customer spotlight: share a short story or quote from a happy customer (with permission).
3. Quick tips: three practical tips your audience can use today, one per slide or clip.
4. Day in the life: a casual look at a normal working day builds connection.
5. Before/after: nothing sells progress like a clear transformation.

Pick one or two formats and post consistently rather than trying all five at once. Want captions for any of these? Just ask.`, companyOrDefault(ctx, "your business"))
		},
	},
	{
		name:     "caption-writing",
		keywords: []string{"caption", "write a post", "copy for", "what should i say"},
		answer: func(ctx *transfer.BusinessContext) string {
			return fmt.Sprintf(`A strong caption has three parts:

Hook — the first line decides whether anyone keeps reading. Lead with a question, a bold claim, or a number.
Body — one idea, stated plainly. For %s, talk about the outcome your customer gets, not the feature.
Call to action — tell people exactly what to do next: comment, save, tap the link.

Try the caption generator in the composer: give it a topic and tone and it will draft one per platform for you.`, industryOrDefault(ctx, "your industry"))
		},
	},
	{
		name:     "hashtags",
		keywords: []string{"hashtag", "tags", "#"},
		answer: func(ctx *transfer.BusinessContext) string {
			return fmt.Sprintf(`Hashtag strategy in short:

- Use 5-10 per post on Instagram, 3-5 on TikTok, 2-3 on LinkedIn and Twitter/X.
- Mix sizes: a couple of large tags (500k+ posts), several medium (50k-500k), and a few niche ones specific to %s.
- Make one branded hashtag and use it on everything so your content is findable in one place.
- Skip banned or spammy tags; they quietly suppress reach.

Rotate two or three tag sets rather than pasting the same block on every post.`, industryOrDefault(ctx, "your niche"))
		},
	},
	{
		name:     "posting-time",
		keywords: []string{"posting time", "best time", "when to post", "when should i post", "schedule"},
		answer: func(ctx *transfer.BusinessContext) string {
			return `Good starting points for posting times (local to your audience):

- Instagram: weekdays 11am-1pm and 7-9pm
- TikTok: 6-10pm, especially Tuesday through Thursday
- LinkedIn: Tuesday-Thursday 8-10am, lunchtime works too
- Twitter/X: weekdays 9am-12pm

These are averages, not rules. Post consistently for a few weeks, check which slots perform, and let your own numbers override the defaults. The calendar here makes it easy to keep a steady schedule.`
		},
	},
	{
		name:     "strategy",
		keywords: []string{"strategy", "grow", "growth", "more followers", "engagement"},
		answer: func(ctx *transfer.BusinessContext) string {
			return fmt.Sprintf(`A simple strategy frame for %s:

1. Pick two platforms where your audience actually is, and ignore the rest for now.
2. Decide on three content pillars (e.g. education, behind-the-scenes, social proof) and rotate them.
3. Post on a fixed cadence — three times a week beats ten posts one week and silence the next.
4. Spend 10 minutes after posting replying to comments; early engagement compounds.
5. Review monthly: double down on the two best-performing posts' formats.

Consistency over intensity. The scheduler here exists precisely so step 3 doesn't depend on willpower.`, companyOrDefault(ctx, "your brand"))
		},
	},
}

const defaultAssistantAnswer = `I can help with content ideas, captions, hashtags, posting times, and overall social media strategy. Tell me a bit about what you're working on — for example "give me content ideas for a coffee shop" or "when should I post on LinkedIn?" — and I'll take it from there.`

// matchIntent returns the first rule whose keywords appear in the message,
// checked in priority order.
func matchIntent(message string) (intentRule, bool) {
	lowered := strings.ToLower(message)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule, true
			}
		}
	}
	return intentRule{}, false
}

func companyOrDefault(ctx *transfer.BusinessContext, fallback string) string {
	if ctx != nil && ctx.Company != "" {
		return ctx.Company
	}
	return fallback
}

func industryOrDefault(ctx *transfer.BusinessContext, fallback string) string {
	if ctx != nil && ctx.Industry != "" {
		return ctx.Industry
	}
	return fallback
}
