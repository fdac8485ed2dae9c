package taxonomy

type SeedCategory struct {
	Name    string
	Slug    string
	Options []SeedOption
}

type SeedOption struct {
	Name string
	Slug string
}

// SeedReport counts what a seed run inserted versus refreshed.
type SeedReport struct {
	CategoriesCreated int `json:"categoriesCreated"`
	CategoriesUpdated int `json:"categoriesUpdated"`
	OptionsCreated    int `json:"optionsCreated"`
	OptionsUpdated    int `json:"optionsUpdated"`
}

func (r *SeedReport) countCategory(created bool) {
	if created {
		r.CategoriesCreated++
		return
	}
	r.CategoriesUpdated++
}

func (r *SeedReport) countOption(created bool) {
	if created {
		r.OptionsCreated++
		return
	}
	r.OptionsUpdated++
}

// DefaultTaxonomy is the v1 needs taxonomy.
var DefaultTaxonomy = []SeedCategory{
	{
		Name: "Capital & Financial",
		Slug: "capital-financial",
		Options: []SeedOption{
			{Name: "Seeking pre-seed / seed funding", Slug: "seeking-preseed-seed"},
			{Name: "Introductions to angels", Slug: "intro-angels"},
			{Name: "Introductions to VCs", Slug: "intro-vcs"},
			{Name: "Grant opportunities", Slug: "grant-opportunities"},
			{Name: "Revenue / customer leads", Slug: "revenue-customer-leads"},
			{Name: "Pricing or monetization guidance", Slug: "pricing-monetization"},
		},
	},
	{
		Name: "People & Partners",
		Slug: "people-partners",
		Options: []SeedOption{
			{Name: "Technical co-founder", Slug: "technical-cofounder"},
			{Name: "Product / design partner", Slug: "product-design-partner"},
			{Name: "Business / operations partner", Slug: "business-ops-partner"},
			{Name: "Sales or growth partner", Slug: "sales-growth-partner"},
			{Name: "Advisors / mentors", Slug: "advisors-mentors"},
			{Name: "Early employees or contractors", Slug: "early-employees"},
		},
	},
	{
		Name: "Product & Engineering",
		Slug: "product-engineering",
		Options: []SeedOption{
			{Name: "Architecture or technical review", Slug: "architecture-review"},
			{Name: "MVP build support", Slug: "mvp-build-support"},
			{Name: "AI / ML expertise", Slug: "ai-ml-expertise"},
			{Name: "Data engineering / analytics", Slug: "data-engineering"},
			{Name: "Security or infrastructure guidance", Slug: "security-infra"},
			{Name: "Hardware / physical product expertise", Slug: "hardware-expertise"},
		},
	},
	{
		Name: "Design & UX",
		Slug: "design-ux",
		Options: []SeedOption{
			{Name: "UX / product design feedback", Slug: "ux-design-feedback"},
			{Name: "Brand or identity help", Slug: "brand-identity"},
			{Name: "Design systems or UI polish", Slug: "design-systems"},
			{Name: "Prototyping or user testing", Slug: "prototyping-testing"},
		},
	},
	{
		Name: "Go-to-Market & Growth",
		Slug: "go-to-market",
		Options: []SeedOption{
			{Name: "Customer discovery / interviews", Slug: "customer-discovery"},
			{Name: "Marketing or growth strategy", Slug: "marketing-growth"},
			{Name: "Distribution partnerships", Slug: "distribution-partnerships"},
			{Name: "Enterprise sales guidance", Slug: "enterprise-sales"},
			{Name: "Community or developer adoption", Slug: "community-adoption"},
		},
	},
	{
		Name: "Legal, Ops & Business Setup",
		Slug: "legal-ops-business",
		Options: []SeedOption{
			{Name: "Incorporation or entity setup", Slug: "incorporation-setup"},
			{Name: "IP or patent guidance", Slug: "ip-patent"},
			{Name: "Contracts or compliance", Slug: "contracts-compliance"},
			{Name: "Accounting / finance setup", Slug: "accounting-finance"},
			{Name: "Operations or logistics help", Slug: "operations-logistics"},
		},
	},
	{
		Name: "Resources & Access",
		Slug: "resources-access",
		Options: []SeedOption{
			{Name: "Access to specialized equipment", Slug: "specialized-equipment"},
			{Name: "Manufacturing or fabrication resources", Slug: "manufacturing-fab"},
			{Name: "Lab, studio, or workspace access", Slug: "workspace-access"},
			{Name: "Data sets or proprietary data access", Slug: "data-access"},
			{Name: "Beta users or pilot customers", Slug: "beta-users"},
		},
	},
	{
		Name: "Visibility & Exposure",
		Slug: "visibility-exposure",
		Options: []SeedOption{
			{Name: "Press or media exposure", Slug: "press-media"},
			{Name: "Speaking or demo opportunities", Slug: "speaking-demos"},
			{Name: "Showcase or launch support", Slug: "showcase-launch"},
		},
	},
}
