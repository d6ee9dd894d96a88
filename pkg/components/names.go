package components

// Page component names registered by NewPageRegistry.
const (
	NameContainer = "container"
	NameSection   = "section"
	NameRow       = "row"
	NameColumn    = "column"
	NameList      = "list"
	NameHeading   = "heading"
	NameText      = "text"
	NameRichText  = "rich_text"
	NameImage     = "image"
	NameButton    = "button"
	NameLink      = "link"
	NameDivider   = "divider"
	NameSpacer    = "spacer"
)

// Field component names registered by NewFieldRegistry.
const (
	FieldText     = "text"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldNumber   = "number"
	FieldTel      = "tel"
	FieldURL      = "url"
	FieldDate     = "date"
	FieldTextarea = "textarea"
	FieldSelect   = "select"
	FieldRadio    = "radio"
	FieldCheckbox = "checkbox"
	FieldBoolean  = "boolean"
	FieldOption   = "option"
	FieldHidden   = "hidden"
	FieldHoneypot = "honeypot"
)

// Property keys the forms compiler injects before calling a field factory.
const (
	PropErrors = "errors"
	PropGroup  = "group"
)
