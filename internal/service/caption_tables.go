package service

import "github.com/postdeckhq/postdeck/internal/models"

// Deterministic caption data. Skeletons are keyed tone -> platform and render
// by substituting the topic; hashtags are fixed per platform and emojis fixed
// per tone, so identical input always yields identical output.

const (
	ToneProfessional  = "professional"
	ToneWitty         = "witty"
	ToneChill         = "chill"
	ToneInspirational = "inspirational"
	ToneUrgent        = "urgent"
)

const (
	PurposeAnnouncement = "announcement"
	PurposeEngagement   = "engagement"
	PurposeTraffic      = "traffic"
	PurposeEducation    = "education"
)

const (
	defaultTone     = ToneProfessional
	defaultPlatform = models.PlatformInstagram
)

var captionSkeletons = map[string]map[string]string{
	ToneProfessional: {
		models.PlatformInstagram: "We're pleased to share an update on %s. Our team has been working hard to deliver real value, and we can't wait for you to see the results. Learn more at the link in our bio.",
		models.PlatformTiktok:    "A closer look at %s — here's what goes on behind the scenes and why it matters for you.",
		models.PlatformLinkedin:  "Announcing %s. This milestone reflects our commitment to delivering meaningful outcomes for our clients and partners. We welcome your thoughts in the comments.",
		models.PlatformTwitter:   "Announcing %s. More details below — we think you'll like where this is going.",
	},
	ToneWitty: {
		models.PlatformInstagram: "Plot twist: %s just happened. You might want to sit down for this one. (Or don't, we're not your boss.)",
		models.PlatformTiktok:    "POV: you just found out about %s and now your whole week is made.",
		models.PlatformLinkedin:  "We did a thing: %s. Professionally speaking, it's kind of a big deal.",
		models.PlatformTwitter:   "Breaking news: %s. Yes, really. No, we're not kidding.",
	},
	ToneChill: {
		models.PlatformInstagram: "Just dropping this here: %s. No big deal... okay, maybe a little big deal.",
		models.PlatformTiktok:    "So, %s is a thing now. Come hang out and check it out with us.",
		models.PlatformLinkedin:  "Sharing some news on %s. Take a look whenever you get a minute — no rush.",
		models.PlatformTwitter:   "Hey, quick one: %s is here. That's it, that's the tweet.",
	},
	ToneInspirational: {
		models.PlatformInstagram: "Every journey starts with a single step, and today ours is %s. Here's to chasing what matters and never settling.",
		models.PlatformTiktok:    "This is your sign: %s. Big things start small — come grow with us.",
		models.PlatformLinkedin:  "Growth means showing up every day, and %s is proof of what persistence builds. Grateful for everyone who made this possible.",
		models.PlatformTwitter:   "Dream it, build it, ship it: %s. The best is still ahead.",
	},
	ToneUrgent: {
		models.PlatformInstagram: "Don't wait: %s is live NOW. This won't stick around, so tap the link in bio before it's gone.",
		models.PlatformTiktok:    "Stop scrolling — %s is happening right now and you do not want to miss it.",
		models.PlatformLinkedin:  "Time-sensitive: %s is open now. Availability is limited, so act today.",
		models.PlatformTwitter:   "Last call energy: %s is live. Clock's ticking.",
	},
}

var platformHashtags = map[string][]string{
	models.PlatformInstagram: {"#instagood", "#explorepage", "#smallbusiness", "#behindthescenes"},
	models.PlatformTiktok:    {"#fyp", "#foryou", "#tiktokmademedoit", "#smallbiz"},
	models.PlatformLinkedin:  {"#business", "#growth", "#innovation", "#professionaldevelopment"},
	models.PlatformTwitter:   {"#news", "#update", "#nowlive"},
}

var toneEmojis = map[string][]string{
	ToneProfessional:  {"📊", "🤝", "✅"},
	ToneWitty:         {"😏", "🎉", "👀"},
	ToneChill:         {"😎", "🌊", "✌️"},
	ToneInspirational: {"🚀", "🌟", "💪"},
	ToneUrgent:        {"⏰", "🔥", "🚨"},
}
