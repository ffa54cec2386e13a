package registration

// Step identifies one page of the registration wizard.
type Step int

// The wizard has four fixed steps.
const (
	StepPersonal Step = iota
	StepAcademic
	StepEvents
	StepAdditional
)

// StepCount is the number of wizard steps.
const StepCount = 4

// LastStep is the step from which a registration is submitted.
const LastStep = StepAdditional

// Field kinds used by front ends to pick an input widget.
const (
	KindText     = "text"
	KindEmail    = "email"
	KindPhone    = "phone"
	KindRadio    = "radio"
	KindSelect   = "select"
	KindCheckbox = "checkbox"
	KindTextArea = "textarea"
	KindAgree    = "agree"
)

// Field names as they appear in JSON and in field errors.
const (
	FieldFirstName           = "firstName"
	FieldLastName            = "lastName"
	FieldEmail               = "email"
	FieldPhone               = "phone"
	FieldGender              = "gender"
	FieldCollege             = "college"
	FieldDepartment          = "department"
	FieldYear                = "year"
	FieldStudentID           = "studentId"
	FieldEventsInterested    = "eventsInterested"
	FieldTShirtSize          = "tShirtSize"
	FieldDietaryRestrictions = "dietaryRestrictions"
	FieldSpecialRequirements = "specialRequirements"
	FieldHearAboutUs         = "hearAboutUs"
	FieldAgreeToTerms        = "agreeToTerms"
)

// Option is one choice of an enumerated field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldSpec describes a single form field.
type FieldSpec struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Options  []Option `json:"options,omitempty"`
}

// StepSpec describes the fields collected on one wizard step.
type StepSpec struct {
	Step    Step        `json:"step"`
	Title   string      `json:"title"`
	Heading string      `json:"heading"`
	Fields  []FieldSpec `json:"fields"`
}

// Enumerations
var (
	GenderOptions = []Option{
		{GenderMale, "Male"},
		{GenderFemale, "Female"},
		{GenderOther, "Other"},
		{GenderPreferNotToSay, "Prefer not to say"},
	}
	YearOptions = []Option{
		{YearFirst, "First Year"},
		{YearSecond, "Second Year"},
		{YearThird, "Third Year"},
		{YearFourth, "Fourth Year"},
		{YearFifth, "Fifth Year"},
		{YearGraduate, "Graduate Student"},
	}
	EventOptions = []Option{
		{"hackathon", "Hackathon"},
		{"workshops", "Technical Workshops"},
		{"talks", "Tech Talks"},
		{"networking", "Networking Events"},
		{"competition", "Coding Competition"},
		{"gaming", "Gaming Tournament"},
		{"project", "Project Exhibition"},
		{"career", "Career Fair"},
	}
	TShirtOptions = []Option{
		{"XS", "XS"},
		{"S", "S"},
		{"M", "M"},
		{"L", "L"},
		{"XL", "XL"},
		{"XXL", "XXL"},
	}
	DietaryOptions = []Option{
		{"vegetarian", "Vegetarian"},
		{"vegan", "Vegan"},
		{"gluten-free", "Gluten-Free"},
		{"dairy-free", "Dairy-Free"},
		{"none", "None"},
	}
	HearAboutUsOptions = []Option{
		{"social", "Social Media"},
		{"email", "Email"},
		{"friend", "Friend or Colleague"},
		{"college", "College Notice Board"},
		{"website", "Website"},
		{"other", "Other"},
	}
)

var steps = []StepSpec{
	{
		Step:    StepPersonal,
		Title:   "Personal",
		Heading: "Personal Information",
		Fields: []FieldSpec{
			{Name: FieldFirstName, Label: "First Name", Kind: KindText, Required: true},
			{Name: FieldLastName, Label: "Last Name", Kind: KindText, Required: true},
			{Name: FieldEmail, Label: "Email", Kind: KindEmail, Required: true},
			{Name: FieldPhone, Label: "Phone Number", Kind: KindPhone, Required: true},
			{Name: FieldGender, Label: "Gender", Kind: KindRadio, Required: true, Options: GenderOptions},
		},
	},
	{
		Step:    StepAcademic,
		Title:   "Academic",
		Heading: "Academic Information",
		Fields: []FieldSpec{
			{Name: FieldCollege, Label: "College/University", Kind: KindText, Required: true},
			{Name: FieldDepartment, Label: "Department/Major", Kind: KindText, Required: true},
			{Name: FieldYear, Label: "Year of Study", Kind: KindSelect, Required: true, Options: YearOptions},
			{Name: FieldStudentID, Label: "Student ID", Kind: KindText, Required: true},
		},
	},
	{
		Step:    StepEvents,
		Title:   "Events",
		Heading: "Event Preferences",
		Fields: []FieldSpec{
			{Name: FieldEventsInterested, Label: "Events Interested In", Kind: KindCheckbox, Required: true, Options: EventOptions},
			{Name: FieldTShirtSize, Label: "T-Shirt Size", Kind: KindRadio, Required: true, Options: TShirtOptions},
			{Name: FieldDietaryRestrictions, Label: "Dietary Restrictions", Kind: KindCheckbox, Options: DietaryOptions},
		},
	},
	{
		Step:    StepAdditional,
		Title:   "Additional",
		Heading: "Additional Information",
		Fields: []FieldSpec{
			{Name: FieldSpecialRequirements, Label: "Special Requirements or Accommodations", Kind: KindTextArea},
			{Name: FieldHearAboutUs, Label: "How did you hear about this event?", Kind: KindSelect, Required: true, Options: HearAboutUsOptions},
			{Name: FieldAgreeToTerms, Label: "I agree to the Terms and Conditions and Privacy Policy", Kind: KindAgree, Required: true},
		},
	},
}

// Steps returns the field schema of every wizard step in order.
func Steps() []StepSpec {
	out := make([]StepSpec, len(steps))
	copy(out, steps)
	return out
}

// Spec returns the schema for a single step.
// PRE: s.Valid()
func (s Step) Spec() StepSpec {
	return steps[s]
}

// Title returns the short step title shown in the progress indicator.
func (s Step) Title() string {
	if !s.Valid() {
		return ""
	}
	return steps[s].Title
}

// Valid reports whether s names one of the wizard steps.
func (s Step) Valid() bool {
	return s >= StepPersonal && s <= StepAdditional
}

// OptionLabel returns the human label for value, or value itself when unknown.
func OptionLabel(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func hasOption(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
