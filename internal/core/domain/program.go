package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Degree levels recognised in the corpus.
const (
	LevelBachelor = "bachelor"
	LevelMaster   = "master"
	LevelDoctoral = "doctoral"
)

// ApplicationWindow is the open/close period for applications.
type ApplicationWindow struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Intake describes one admission term.
type Intake struct {
	Term              string            `yaml:"term" json:"term"`
	ApplicationWindow ApplicationWindow `yaml:"application_window" json:"application_window"`
}

// ApplicationPortal points at the external application system.
type ApplicationPortal struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

// Contacts holds programme contact information.
type Contacts struct {
	ProgrammePage            string `yaml:"programme_page,omitempty" json:"programme_page,omitempty"`
	AdmissionsEmail          string `yaml:"admissions_email,omitempty" json:"admissions_email,omitempty"`
	InternationalOfficeEmail string `yaml:"international_office_email,omitempty" json:"international_office_email,omitempty"`
	OfficeHoursURL           string `yaml:"office_hours_url,omitempty" json:"office_hours_url,omitempty"`
}

// LanguageRequirement is a minimum proficiency level plus accepted proofs.
type LanguageRequirement struct {
	MinimumLevel   string   `yaml:"minimum_level" json:"minimum_level"`
	AcceptedProofs []string `yaml:"accepted_proofs,omitempty" json:"accepted_proofs,omitempty"`
}

// LanguageRequirements groups per-language admission requirements.
type LanguageRequirements struct {
	Notes   string               `yaml:"notes,omitempty" json:"notes,omitempty"`
	German  *LanguageRequirement `yaml:"german,omitempty" json:"german,omitempty"`
	English *LanguageRequirement `yaml:"english,omitempty" json:"english,omitempty"`
}

// AcademicBackground lists accepted prior degrees keyed by discipline.
type AcademicBackground struct {
	Bachelor map[string][]string `yaml:"bachelor,omitempty" json:"bachelor,omitempty"`
	Master   map[string][]string `yaml:"master,omitempty" json:"master,omitempty"`
}

// Eligibility describes admission requirements for a programme.
type Eligibility struct {
	AcademicBackground   *AcademicBackground   `yaml:"academic_background,omitempty" json:"academic_background,omitempty"`
	LanguageRequirements *LanguageRequirements `yaml:"language_requirements,omitempty" json:"language_requirements,omitempty"`
	SpecificRequirements string                `yaml:"programme_specific_requirements,omitempty" json:"programme_specific_requirements,omitempty"`
}

// FeeCategory holds the fee breakdown for one applicant category.
type FeeCategory struct {
	StudentUnionPerSemester string   `yaml:"student_union_per_semester,omitempty" json:"student_union_per_semester,omitempty"`
	TuitionPerSemester      string   `yaml:"tuition_per_semester,omitempty" json:"tuition_per_semester,omitempty"`
	ServiceFeePerSemester   string   `yaml:"service_fee_per_semester,omitempty" json:"service_fee_per_semester,omitempty"`
	ApplicationFeeOneTime   string   `yaml:"application_fee_one_time,omitempty" json:"application_fee_one_time,omitempty"`
	OtherFees               []string `yaml:"other_fees,omitempty" json:"other_fees,omitempty"`
}

// Fees holds the fee structure per applicant category.
type Fees struct {
	DomesticGerman     *FeeCategory `yaml:"domestic_german,omitempty" json:"domestic_german,omitempty"`
	EUEEA              *FeeCategory `yaml:"eu_eea,omitempty" json:"eu_eea,omitempty"`
	InternationalNonEU *FeeCategory `yaml:"international_non_eu,omitempty" json:"international_non_eu,omitempty"`
}

// Policies holds programme policies relevant to applicants.
type Policies struct {
	LateDocuments       string `yaml:"late_documents,omitempty" json:"late_documents,omitempty"`
	RecognitionOfPriors string `yaml:"recognition_of_priors,omitempty" json:"recognition_of_priors,omitempty"`
	VisaRequirement     string `yaml:"visa_requirement,omitempty" json:"visa_requirement,omitempty"`
}

// FAQ is a single frequently asked question with its answer.
type FAQ struct {
	Q string `yaml:"q" json:"q"`
	A string `yaml:"a" json:"a"`
}

// Program is one study programme record in the searchable corpus.
// Records are immutable once loaded; a reload replaces the whole corpus.
type Program struct {
	// Code is the unique identifier (e.g. "bsc_ai").
	Code string `yaml:"code" json:"code"`

	// Title is the official programme title.
	Title string `yaml:"title" json:"title"`

	// DegreeLevel is one of LevelBachelor, LevelMaster, LevelDoctoral.
	DegreeLevel string `yaml:"degree_level" json:"degree_level"`

	// Faculty is the owning faculty or department.
	Faculty string `yaml:"faculty" json:"faculty"`

	// LanguageOfInstruction is the teaching language code ("en", "de").
	LanguageOfInstruction string `yaml:"language_of_instruction" json:"language_of_instruction"`

	DurationSemesters int      `yaml:"duration_semesters" json:"duration_semesters"`
	ECTSTotal         int      `yaml:"ects_total" json:"ects_total"`
	FieldOfStudy      string   `yaml:"field_of_study,omitempty" json:"field_of_study,omitempty"`
	Tags              []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	// Optional sections. Absent sections simply contribute nothing to the
	// embedding text projection.
	Intakes           []Intake           `yaml:"intakes,omitempty" json:"intakes,omitempty"`
	ApplicationPortal *ApplicationPortal `yaml:"application_portal,omitempty" json:"application_portal,omitempty"`
	Contacts          *Contacts          `yaml:"contacts,omitempty" json:"contacts,omitempty"`
	Eligibility       *Eligibility       `yaml:"eligibility,omitempty" json:"eligibility,omitempty"`
	Fees              *Fees              `yaml:"fees,omitempty" json:"fees,omitempty"`
	Policies          *Policies          `yaml:"policies,omitempty" json:"policies,omitempty"`
	FAQs              []FAQ              `yaml:"faqs,omitempty" json:"faqs,omitempty"`
	Notes             []string           `yaml:"notes,omitempty" json:"notes,omitempty"`
	CommonQueries     []string           `yaml:"common_queries,omitempty" json:"common_queries,omitempty"`
	QuickFacts        []string           `yaml:"quick_facts,omitempty" json:"quick_facts,omitempty"`
}

// EmbeddingText builds the deterministic text projection used to embed this
// programme. Field order is fixed: title, code, degree level, faculty, teaching
// language, language requirement levels, academic background markers, fee
// markers, intake windows. Re-running on an unchanged record yields an
// identical string.
func (p *Program) EmbeddingText() string {
	var b strings.Builder

	b.WriteString(p.Title)
	b.WriteString(" ")
	b.WriteString(p.Code)
	b.WriteString(" ")
	b.WriteString(p.DegreeLevel)
	b.WriteString(" ")
	b.WriteString(p.Faculty)
	fmt.Fprintf(&b, " language:%s", p.LanguageOfInstruction)

	if e := p.Eligibility; e != nil {
		if lr := e.LanguageRequirements; lr != nil {
			if lr.German != nil {
				fmt.Fprintf(&b, " german:%s", lr.German.MinimumLevel)
			}
			if lr.English != nil {
				fmt.Fprintf(&b, " english:%s", lr.English.MinimumLevel)
			}
		}
		if ab := e.AcademicBackground; ab != nil {
			if len(ab.Bachelor) > 0 {
				fmt.Fprintf(&b, " bachelor_req:%s", joinBackground(ab.Bachelor))
			}
			if len(ab.Master) > 0 {
				fmt.Fprintf(&b, " master_req:%s", joinBackground(ab.Master))
			}
		}
	}

	if f := p.Fees; f != nil {
		b.WriteString(" fees tuition cost price")
		if f.DomesticGerman != nil {
			fmt.Fprintf(&b, " domestic:%s", f.DomesticGerman.TuitionPerSemester)
		}
		if f.InternationalNonEU != nil {
			fmt.Fprintf(&b, " international:%s %s",
				f.InternationalNonEU.TuitionPerSemester,
				f.InternationalNonEU.ServiceFeePerSemester)
		}
	}

	if len(p.Intakes) > 0 {
		b.WriteString(" deadline application date")
		for _, in := range p.Intakes {
			fmt.Fprintf(&b, " %s:%s-%s", in.Term, in.ApplicationWindow.Start, in.ApplicationWindow.End)
		}
	}

	return b.String()
}

// joinBackground flattens an academic background map in sorted key order so
// the projection stays deterministic across loads.
func joinBackground(m map[string][]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, strings.Join(m[k], " "))
	}
	return strings.Join(parts, " ")
}

// ContextString renders every populated field of the programme as indented
// "Key: value" lines for inclusion in a generation prompt.
func (p *Program) ContextString() string {
	var lines []string

	add := func(key, val string) {
		if val != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", key, val))
		}
	}

	add("Code", p.Code)
	add("Title", p.Title)
	add("Degree Level", p.DegreeLevel)
	add("Faculty", p.Faculty)
	add("Language Of Instruction", p.LanguageOfInstruction)
	if p.DurationSemesters > 0 {
		add("Duration Semesters", fmt.Sprintf("%d", p.DurationSemesters))
	}
	if p.ECTSTotal > 0 {
		add("ECTS Total", fmt.Sprintf("%d", p.ECTSTotal))
	}
	add("Field Of Study", p.FieldOfStudy)
	if len(p.Tags) > 0 {
		add("Tags", strings.Join(p.Tags, ", "))
	}

	for _, in := range p.Intakes {
		lines = append(lines, fmt.Sprintf("Intake %s: applications %s to %s",
			in.Term, in.ApplicationWindow.Start, in.ApplicationWindow.End))
	}
	if ap := p.ApplicationPortal; ap != nil {
		add("Application Portal", fmt.Sprintf("%s (%s)", ap.Label, ap.URL))
	}
	if c := p.Contacts; c != nil {
		add("Programme Page", c.ProgrammePage)
		add("Admissions Email", c.AdmissionsEmail)
		add("International Office Email", c.InternationalOfficeEmail)
		add("Office Hours", c.OfficeHoursURL)
	}

	if e := p.Eligibility; e != nil {
		lines = append(lines, "Eligibility:")
		if ab := e.AcademicBackground; ab != nil {
			lines = append(lines, backgroundLines("  Bachelor Background", ab.Bachelor)...)
			lines = append(lines, backgroundLines("  Master Background", ab.Master)...)
		}
		if lr := e.LanguageRequirements; lr != nil {
			if lr.Notes != "" {
				lines = append(lines, "  Language Notes: "+lr.Notes)
			}
			lines = append(lines, requirementLines("  German", lr.German)...)
			lines = append(lines, requirementLines("  English", lr.English)...)
		}
		if e.SpecificRequirements != "" {
			lines = append(lines, "  Programme Specific: "+e.SpecificRequirements)
		}
	}

	if f := p.Fees; f != nil {
		lines = append(lines, "Fees:")
		lines = append(lines, feeLines("  Domestic German", f.DomesticGerman)...)
		lines = append(lines, feeLines("  EU/EEA", f.EUEEA)...)
		lines = append(lines, feeLines("  International Non-EU", f.InternationalNonEU)...)
	}

	if po := p.Policies; po != nil {
		add("Late Documents Policy", po.LateDocuments)
		add("Recognition Of Priors", po.RecognitionOfPriors)
		add("Visa Requirement", po.VisaRequirement)
	}

	for _, faq := range p.FAQs {
		lines = append(lines, fmt.Sprintf("FAQ: %s -> %s", faq.Q, faq.A))
	}
	for _, n := range p.Notes {
		lines = append(lines, "Note: "+n)
	}
	for _, qf := range p.QuickFacts {
		lines = append(lines, "Quick Fact: "+qf)
	}

	return strings.Join(lines, "\n")
}

func backgroundLines(label string, m map[string][]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s %s: %s", label, k, strings.Join(m[k], ", ")))
	}
	return lines
}

func requirementLines(label string, r *LanguageRequirement) []string {
	if r == nil {
		return nil
	}
	lines := []string{fmt.Sprintf("%s: minimum %s", label, r.MinimumLevel)}
	if len(r.AcceptedProofs) > 0 {
		lines = append(lines, fmt.Sprintf("%s Proofs: %s", label, strings.Join(r.AcceptedProofs, ", ")))
	}
	return lines
}

func feeLines(label string, f *FeeCategory) []string {
	if f == nil {
		return nil
	}
	var lines []string
	if f.TuitionPerSemester != "" {
		lines = append(lines, fmt.Sprintf("%s Tuition Per Semester: %s", label, f.TuitionPerSemester))
	}
	if f.StudentUnionPerSemester != "" {
		lines = append(lines, fmt.Sprintf("%s Student Union Per Semester: %s", label, f.StudentUnionPerSemester))
	}
	if f.ServiceFeePerSemester != "" {
		lines = append(lines, fmt.Sprintf("%s Service Fee Per Semester: %s", label, f.ServiceFeePerSemester))
	}
	if f.ApplicationFeeOneTime != "" {
		lines = append(lines, fmt.Sprintf("%s Application Fee One Time: %s", label, f.ApplicationFeeOneTime))
	}
	for _, other := range f.OtherFees {
		lines = append(lines, fmt.Sprintf("%s Other: %s", label, other))
	}
	return lines
}

// FormatProgramContext renders retrieved programmes for the generation prompt,
// numbered and separated so the model can attribute facts to a programme.
func FormatProgramContext(programs []Program) string {
	if len(programs) == 0 {
		return "No specific program data available for this query."
	}

	parts := make([]string, 0, len(programs))
	for i := range programs {
		parts = append(parts, fmt.Sprintf("Program %d: %s", i+1, programs[i].ContextString()))
	}
	return strings.Join(parts, "\n---\n")
}
