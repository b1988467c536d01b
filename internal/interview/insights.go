// Angel Guided Interview Engine
// Data-driven contextual insights, support-area detection, draft hints

package interview

import "strings"

// fieldInsight pairs a keyword set identifying a business field with the
// coaching insight injected ahead of the next question. A single declarative
// table replaces per-field branching.
type fieldInsight struct {
	field    string
	keywords []string
	insight  string
}

var fieldInsights = []fieldInsight{
	{
		field:    "social media",
		keywords: []string{"social media", "instagram", "tiktok", "youtube", "influencer", "content creator", "short-form videos"},
		insight:  "Social media influencing is a very popular field with significant opportunities. The most successful creators cross-post to platforms like YouTube, Threads, and LinkedIn to expand their reach, and podcasts have become a strong companion medium. Consider building a consistent brand voice across every platform.",
	},
	{
		field:    "food",
		keywords: []string{"restaurant", "food", "cooking", "chef", "culinary", "dining", "wine", "beverage"},
		insight:  "The food and beverage industry is highly competitive but rewarding for those who find their niche. Successful food businesses focus on unique flavors, local sourcing, and memorable experiences. Keep food safety certifications and local health department requirements on your radar early.",
	},
	{
		field:    "technology",
		keywords: []string{"app", "software", "tech", "digital", "online", "platform", "website", "mobile"},
		insight:  "The tech industry moves quickly, so staying current with trends matters. Pay attention to user experience, scalability, and data security. Many successful startups begin with a minimum viable product to test demand before committing to full development.",
	},
	{
		field:    "retail",
		keywords: []string{"store", "shop", "retail", "selling", "ecommerce", "marketplace"},
		insight:  "Retail success depends on understanding your target market and building a strong brand identity. Think about both online and offline presence, inventory management, and customer service. The winning balance is usually between quality and accessibility.",
	},
	{
		field:    "services",
		keywords: []string{"service", "consulting", "coaching", "training", "professional", "review", "critique"},
		insight:  "Service businesses live and die on reputation and word of mouth. Strong client relationships, consistent quality, and clear service agreements are essential, and reviews and testimonials carry outsized weight in this space.",
	},
	{
		field:    "health",
		keywords: []string{"health", "fitness", "wellness", "medical", "therapy", "nutrition"},
		insight:  "Health-related businesses require careful attention to regulations and certifications. Building trust, maintaining confidentiality, and staying current with industry standards are essential — credibility is everything in this field.",
	},
	{
		field:    "education",
		keywords: []string{"education", "teaching", "learning", "course", "tutorial"},
		insight:  "Education businesses thrive on engaging learning experiences. Focus on curriculum design, student engagement, and measurable outcomes — the best content pairs practical knowledge with interactive elements.",
	},
	{
		field:    "entertainment",
		keywords: []string{"entertainment", "music", "art", "creative", "media", "video", "content"},
		insight:  "Entertainment businesses succeed through unique content and a loyal audience. Consistency and authenticity matter more than volume; invest in understanding what resonates with the audience you want to build.",
	},
}

// IdentifyField returns the business field inferred from user input, or
// empty string when nothing matches. First table entry wins.
func IdentifyField(userInput string) string {
	lower := strings.ToLower(userInput)
	for _, fi := range fieldInsights {
		for _, kw := range fi.keywords {
			if strings.Contains(lower, kw) {
				return fi.field
			}
		}
	}
	return ""
}

// InjectInsight inserts the coaching insight for the user's business field
// before the reply's question line. Idempotent: a reply already carrying
// the insight is returned unchanged.
func InjectInsight(reply, userInput string) string {
	field := IdentifyField(userInput)
	if field == "" {
		return reply
	}
	var insight string
	for _, fi := range fieldInsights {
		if fi.field == field {
			insight = fi.insight
			break
		}
	}
	if insight == "" || strings.Contains(reply, insight) {
		return reply
	}

	lines := strings.Split(reply, "\n")
	for i, line := range lines {
		if strings.Contains(line, "?") && len(strings.TrimSpace(line)) > minQuestionLength {
			out := make([]string, 0, len(lines)+2)
			out = append(out, lines[:i]...)
			out = append(out, "", insight, "")
			out = append(out, lines[i:]...)
			return strings.Join(out, "\n")
		}
	}
	return reply
}

// supportArea pairs trigger keywords with the deeper-coverage keywords
// whose absence indicates the user needs guidance in that area.
type supportArea struct {
	name     string
	triggers []string
	covered  []string
}

var supportAreas = []supportArea{
	{
		name:     "Financial Planning & Projections",
		triggers: []string{"budget", "funding", "money", "cost", "price", "financial"},
		covered:  []string{"financial projections", "break even", "revenue model"},
	},
	{
		name:     "Market Research & Competitive Analysis",
		triggers: []string{"market", "customers", "competition", "target"},
		covered:  []string{"market research", "competitive analysis", "market size"},
	},
	{
		name:     "Operations & Process Planning",
		triggers: []string{"operations", "process", "staff"},
		covered:  []string{"operational plan", "staffing plan", "systems"},
	},
	{
		name:     "Legal Structure & Compliance",
		triggers: []string{"legal", "license", "permit", "regulation", "compliance"},
		covered:  []string{"business structure", "licenses required", "legal requirements"},
	},
	{
		name:     "Marketing & Sales Strategy",
		triggers: []string{"marketing", "sales", "brand"},
		covered:  []string{"marketing strategy", "sales process", "customer acquisition"},
	},
	{
		name:     "Technology & Digital Tools",
		triggers: []string{"technology", "software", "website", "digital"},
		covered:  []string{"technology requirements", "digital tools", "software needs"},
	},
}

// IdentifySupportAreas scans the user's side of the conversation for topics
// they have raised but not covered in depth.
func IdentifySupportAreas(history []Turn) []string {
	var sb strings.Builder
	for _, t := range history {
		if t.Role == RoleUser {
			sb.WriteString(strings.ToLower(t.Content))
			sb.WriteString(" ")
		}
	}
	text := sb.String()
	if text == "" {
		return nil
	}

	var areas []string
	for _, sa := range supportAreas {
		if containsAny(text, sa.triggers) && !containsAny(text, sa.covered) {
			areas = append(areas, sa.name)
		}
	}
	return areas
}

// AppendSupportGuidance appends proactive support guidance when gaps were
// identified. Idempotent via the heading check.
func AppendSupportGuidance(reply string, areas []string) string {
	if len(areas) == 0 || strings.Contains(reply, "Areas Where You May Need Additional Support") {
		return reply
	}
	var b strings.Builder
	b.WriteString(reply)
	b.WriteString("\n\n**Areas Where You May Need Additional Support:**\n")
	for _, area := range areas {
		b.WriteString("• **" + area + "** — use 'Support' for detailed guidance here\n")
	}
	return b.String()
}

// draftHintTopics pairs question-topic keywords with the history keywords
// that mean the user already shared relevant material.
var draftHintTopics = map[string][]string{
	"target audience":   {"audience", "customers", "demographic", "market"},
	"business name":     {"name", "brand", "company"},
	"products/services": {"product", "service", "offer", "sell", "provide"},
	"mission/vision":    {"mission", "vision", "purpose", "goal"},
	"location":          {"location", "city", "country", "region"},
	"industry":          {"industry", "sector", "field"},
	"resources":         {"resources", "tools", "equipment", "team", "budget"},
}

const draftHint = "\n\n**Quick Tip**: Based on information you've already shared, you can select **\"Draft\"** and I'll use it to prepare an answer for you to review."

// SuggestDraft appends a draft hint when the current question covers a topic
// the user has already discussed. Idempotent via the hint text check.
func SuggestDraft(reply string, history []Turn) string {
	if strings.Contains(reply, "Quick Tip") {
		return reply
	}
	lowerReply := strings.ToLower(reply)

	var matched []string
	for _, keywords := range draftHintTopics {
		if containsAny(lowerReply, keywords) {
			matched = keywords
			break
		}
	}
	if matched == nil {
		return reply
	}

	for _, t := range history {
		if t.Role == RoleUser && len(t.Content) > 10 && containsAny(strings.ToLower(t.Content), matched) {
			return reply + draftHint
		}
	}
	return reply
}
