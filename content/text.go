package content

// Highlight is one of the short "how I work" blurbs next to the about text
type Highlight struct {
	Icon  string
	Title string
	Body  string
}

// Links are the outbound profile links. They are configured per deployment.
type Links struct {
	GitHub   string
	LinkedIn string
	Email    string
}

// MailTo returns the mailto: href for the contact address.
func (l Links) MailTo() string {
	return "mailto:" + l.Email
}

var (
	SiteTitle = "DevSecOps Portfolio"

	HeroTitle = "DevSecOps Engineer"

	HeroTagline = `Building secure, scalable infrastructure with automation and best practices.
	Passionate about integrating security throughout the entire development lifecycle.`

	AboutMe = []string{
		`I'm a DevSecOps engineer with a passion for building secure, automated infrastructure.
	With expertise in cloud platforms, containerization, and CI/CD pipelines, I help organizations
	implement security best practices from day one.`,
		`My approach combines infrastructure as code, automated security scanning, and continuous
	monitoring to create resilient systems that scale with confidence.`,
	}

	Highlights = []Highlight{
		{Icon: "shield", Title: "Security-First Mindset", Body: "Integrating security into every stage of the development pipeline."},
		{Icon: "code", Title: "Infrastructure as Code", Body: "Provisioning and managing cloud resources through version-controlled code."},
		{Icon: "zap", Title: "Automation & Efficiency", Body: "Building automated pipelines that reduce manual work and human error."},
	}

	Skills = []string{
		"Kubernetes",
		"Terraform",
		"CI/CD Pipelines",
		"Docker",
		"Cloud Security",
		"AWS/GCP",
		"Infrastructure as Code",
		"DevOps Automation",
		"Security Scanning",
		"Policy as Code",
		"Monitoring & Logging",
		"Secret Management",
	}

	ContactIntro = "Have a project in mind or want to discuss DevSecOps practices? I'd love to hear from you."

	Footer = "© 2026 DevSecOps Portfolio. Built with security-first principles."
)
