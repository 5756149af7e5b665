package content

import "github.com/snapgo/snapgo-site/internal/model"

// 静的デフォルト。各関数は呼び出しごとに新しい値を返すため、呼び出し元が変更しても
// 他のリクエストには影響しない。

// DefaultHero はヒーローセクションのデフォルト。
func DefaultHero() model.Hero {
	return model.Hero{
		Title:    "Share the ride. Split the cost.",
		Subtitle: "Snapgo matches you with verified riders heading the same way, so every trip is cheaper, greener and safer.",
		CTAText:  "Get the app",
		CTALink:  "/download",
		ImageURL: "/images/hero.webp",
	}
}

// DefaultStats は実績値のデフォルト。
func DefaultStats() model.Stats {
	return model.Stats{
		ActiveRiders: 25000,
		RidesShared:  180000,
		Cities:       12,
		CO2SavedKg:   410000,
		Rating:       4.8,
	}
}

// DefaultAbout は会社紹介のデフォルト。
func DefaultAbout() model.About {
	return model.About{
		Title:   "About Snapgo",
		Mission: "Make everyday travel affordable by filling the empty seats already on the road.",
		Vision:  "A city where no one rides alone unless they want to.",
		Body:    "<p>Snapgo started as a carpool group for students commuting to the same campus. Today it connects riders across twelve cities.</p>",
	}
}

// DefaultFeatures は特長一覧のデフォルト。
func DefaultFeatures() []model.Feature {
	return []model.Feature{
		{ID: "feature-matching", Title: "Smart matching", Description: "Riders are paired by route overlap and departure time, not just distance.", Icon: "route", Order: 1},
		{ID: "feature-verified", Title: "Verified riders", Description: "Every rider verifies a phone number and institutional or work email.", Icon: "shield", Order: 2},
		{ID: "feature-split", Title: "Fair fare split", Description: "The fare is split automatically based on the distance each rider travels.", Icon: "wallet", Order: 3},
		{ID: "feature-sos", Title: "In-ride SOS", Description: "Share your live trip and reach emergency contacts with one tap.", Icon: "alert", Order: 4},
	}
}

// DefaultSteps は使い方の手順のデフォルト。
func DefaultSteps() []model.Step {
	return []model.Step{
		{ID: "step-1", Title: "Set your route", Description: "Enter where you are and where you are going.", Order: 1},
		{ID: "step-2", Title: "Find a match", Description: "Pick a rider or pool heading the same way.", Order: 2},
		{ID: "step-3", Title: "Ride and split", Description: "Book the cab together and split the fare in the app.", Order: 3},
	}
}

// DefaultTestimonials は利用者の声のデフォルト。
func DefaultTestimonials() []model.Testimonial {
	return []model.Testimonial{
		{ID: "testimonial-1", Name: "Aarav M.", Role: "Student", Quote: "My airport rides cost less than half of what they used to.", Rating: 5, IsActive: true, Order: 1},
		{ID: "testimonial-2", Name: "Priya S.", Role: "Software engineer", Quote: "I found a regular pool for my office commute in the first week.", Rating: 5, IsActive: true, Order: 2},
		{ID: "testimonial-3", Name: "Rohan K.", Role: "Early tester", Quote: "Matching was slow during the beta but the team fixed it fast.", Rating: 4, IsActive: false, Order: 3},
	}
}

// DefaultFAQs はよくある質問のデフォルト。
func DefaultFAQs() []model.FAQ {
	return []model.FAQ{
		{ID: "faq-what", Question: "What is Snapgo?", Answer: "Snapgo is a ride-pooling app that matches people travelling the same route so they can share a cab and split the fare.", Category: "general", IsActive: true, Order: 1},
		{ID: "faq-safe", Question: "Is it safe to ride with strangers?", Answer: "Every rider is verified, trips can be shared live with your contacts, and an in-ride SOS is always one tap away.", Category: "safety", IsActive: true, Order: 2},
		{ID: "faq-pay", Question: "How is the fare split?", Answer: "The fare is split in proportion to the distance each rider travels and settled in the app.", Category: "payments", IsActive: true, Order: 3},
		{ID: "faq-cancel", Question: "Can I cancel a pooled ride?", Answer: "Yes. Cancelling before a match is confirmed is free; see the refund policy for later cancellations.", Category: "payments", IsActive: true, Order: 4},
		{ID: "faq-cities", Question: "Which cities are supported?", Answer: "The list of cities is being updated.", Category: "general", IsActive: false, Order: 5},
	}
}

// DefaultTeam はチームメンバーのデフォルト。
func DefaultTeam() []model.TeamMember {
	return []model.TeamMember{
		{ID: "team-founder", Name: "Ishaan Verma", Role: "Co-founder & CEO", Bio: "Started Snapgo after one too many expensive solo airport rides.", PhotoURL: "/images/team/ishaan.webp", IsActive: true, Order: 1},
		{ID: "team-cto", Name: "Meera Nair", Role: "Co-founder & CTO", Bio: "Builds the matching engine and the rider safety stack.", PhotoURL: "/images/team/meera.webp", IsActive: true, Order: 2},
		{ID: "team-ops", Name: "Kabir Singh", Role: "Head of Operations", Bio: "Runs city launches and rider support.", PhotoURL: "/images/team/kabir.webp", IsActive: true, Order: 3},
		{ID: "team-intern", Name: "Ananya Rao", Role: "Design Intern", Bio: "Designed the first version of the rider app.", PhotoURL: "/images/team/ananya.webp", IsActive: false, Order: 4},
	}
}

// DefaultBlogPosts はブログ記事のデフォルト。
func DefaultBlogPosts() []model.BlogPost {
	return []model.BlogPost{
		{
			ID:          "blog-welcome",
			Slug:        "welcome-to-snapgo",
			Title:       "Welcome to Snapgo",
			Excerpt:     "Why we built a ride-pooling app for everyday commutes.",
			Body:        "<p>Most cabs on the road carry one passenger. Snapgo exists to fill the other seats.</p>",
			Author:      "Ishaan Verma",
			CoverImage:  "/images/blog/welcome.webp",
			Tags:        []string{"announcement"},
			Published:   true,
			PublishedAt: "2024-01-15T00:00:00.000Z",
			Order:       1,
		},
		{
			ID:          "blog-safety",
			Slug:        "how-we-keep-rides-safe",
			Title:       "How we keep pooled rides safe",
			Excerpt:     "Verification, live trip sharing and SOS, explained.",
			Body:        "<p>Safety is built into every step of a Snapgo ride, from sign-up to drop-off.</p>",
			Author:      "Meera Nair",
			CoverImage:  "/images/blog/safety.webp",
			Tags:        []string{"safety"},
			Published:   true,
			PublishedAt: "2024-03-02T00:00:00.000Z",
			Order:       2,
		},
	}
}

var legalDocumentIDs = []string{"terms", "privacy", "refund", "safety"}

// LegalDocumentIDs はlegalドキュメントセットの種類を返す。
func LegalDocumentIDs() []string {
	return append([]string(nil), legalDocumentIDs...)
}

// DefaultLegalDocument は規約類のデフォルト。未知の種類にはゼロ値を返す。
func DefaultLegalDocument(kind string) model.LegalDocument {
	switch kind {
	case "terms":
		return model.LegalDocument{
			Title:         "Terms of Service",
			Body:          "<p>By using Snapgo you agree to ride respectfully, share accurate trip details and pay your share of the fare.</p>",
			EffectiveDate: "2024-01-01",
		}
	case "privacy":
		return model.LegalDocument{
			Title:         "Privacy Policy",
			Body:          "<p>We collect only the data needed to match rides and keep riders safe. We never sell personal data.</p>",
			EffectiveDate: "2024-01-01",
		}
	case "refund":
		return model.LegalDocument{
			Title:         "Refund Policy",
			Body:          "<p>Cancellations before a match is confirmed are refunded in full. Later cancellations may incur a fee.</p>",
			EffectiveDate: "2024-01-01",
		}
	case "safety":
		return model.LegalDocument{
			Title:         "Safety Guidelines",
			Body:          "<p>Verify your co-rider in the app before boarding and share your trip with a trusted contact.</p>",
			EffectiveDate: "2024-01-01",
		}
	default:
		return model.LegalDocument{}
	}
}
