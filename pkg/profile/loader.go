package profile

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Load reads a profile from a JSON file.
func Load(path string) (p Profile, err error) {
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read profile file: %s", path)
		return p, err
	}

	err = json.Unmarshal(fileData, &p)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse profile JSON: %s", path)
		return p, err
	}

	err = p.Validate()
	if err != nil {
		err = errors.Wrap(err, "profile validation failed")
		return p, err
	}

	return p, err
}

// Save writes a profile as indented JSON.
func Save(path string, p Profile) (err error) {
	var data []byte
	data, err = json.MarshalIndent(p, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal profile")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write profile file: %s", path)
		return err
	}

	return err
}

// Validate checks that the profile is well-formed.
func (p *Profile) Validate() (err error) {
	if p.Name == "" {
		err = errors.New("profile name is required")
		return err
	}

	seen := make(map[int]bool)
	for i, exp := range p.Experience {
		if exp.Company == "" && exp.Role == "" {
			err = errors.Errorf("experience at index %d has neither company nor role", i)
			return err
		}
		if seen[exp.ID] {
			err = errors.Errorf("duplicate experience id %d", exp.ID)
			return err
		}
		seen[exp.ID] = true
	}

	return err
}

// Merge overlays the non-empty fields of parsed onto p, as done when importing
// resume text.
func (p Profile) Merge(parsed Profile) (merged Profile) {
	merged = p

	setString := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}

	setString(&merged.Name, parsed.Name)
	setString(&merged.Role, parsed.Role)
	setString(&merged.Email, parsed.Email)
	setString(&merged.Phone, parsed.Phone)
	setString(&merged.Location, parsed.Location)
	setString(&merged.LinkedIn, parsed.LinkedIn)
	setString(&merged.GitHub, parsed.GitHub)
	setString(&merged.Summary, parsed.Summary)

	if len(parsed.Skills) > 0 {
		merged.Skills = parsed.Skills
	}
	if len(parsed.Experience) > 0 {
		merged.Experience = parsed.Experience
	}
	if len(parsed.Education) > 0 {
		merged.Education = parsed.Education
	}

	return merged
}

// ApplyRewrites returns the experience list with descriptions replaced by any
// rewrite sharing the same ID. Entries without a rewrite are unchanged.
func ApplyRewrites(experience []Experience, rewrites []ExperienceRewrite) (resolved []Experience) {
	byID := make(map[int]string, len(rewrites))
	for _, r := range rewrites {
		if r.Description != "" {
			byID[r.ID] = r.Description
		}
	}

	resolved = make([]Experience, len(experience))
	for i, exp := range experience {
		resolved[i] = exp
		if desc, ok := byID[exp.ID]; ok {
			resolved[i].Description = desc
		}
	}

	return resolved
}

// Demo returns the sample profile used when a user starts without importing a resume.
func Demo() (p Profile) {
	p = Profile{
		Name:     "Alex Chen",
		Role:     "Senior Software Engineer",
		Email:    "alex.chen@email.com",
		Phone:    "(555) 123-4567",
		Location: "San Francisco, CA",
		LinkedIn: "https://linkedin.com/in/alexchen",
		GitHub:   "https://github.com/alexchen",
		Summary:  "Experienced software engineer with 5+ years developing scalable web applications and leading cross-functional teams.",
		Skills:   []string{"JavaScript", "React", "Node.js", "Python", "AWS", "TypeScript", "MongoDB", "Docker"},
		Experience: []Experience{
			{
				ID:          1,
				Role:        "Senior Software Engineer",
				Company:     "TechCorp",
				Period:      "2021 - Present",
				Description: "Led development of microservices architecture serving 1M+ users. Mentored junior developers and improved system performance by 40%.",
			},
			{
				ID:          2,
				Role:        "Software Engineer",
				Company:     "StartupXYZ",
				Period:      "2019 - 2021",
				Description: "Built full-stack applications using React and Node.js. Implemented CI/CD pipelines and reduced deployment time by 60%.",
			},
		},
		Education: []Education{
			{
				ID:     1,
				Degree: "Bachelor of Science in Computer Science",
				School: "University of California, Berkeley",
				Period: "2015 - 2019",
			},
		},
	}
	return p
}
