package schema

// Type is a bit set of JSON value types a field accepts. null is always
// accepted and means "unset".
type Type uint8

const (
	TypeString Type = 1 << iota
	TypeInt
	TypeNumber
	TypeBool
	TypeObject
	TypeArray

	TypeAny = TypeString | TypeInt | TypeNumber | TypeBool | TypeObject | TypeArray
)

// Field describes one accepted input key.
type Field struct {
	Name        string
	Type        Type
	Description string
}

// Insertion-only keys. They steer where a new component goes and are never
// stored on the component.
const (
	KeyFilePath       = "file_path"
	KeyParentID       = "parent_id"
	KeyBeforeID       = "before_id"
	KeyAfterID        = "after_id"
	KeyComponentID    = "component_id"
	KeyResponseFormat = "response_format"
	KeyAutoPosition   = "auto_position"
)

var insertionFields = []Field{
	{KeyFilePath, TypeString, "Target page JSON path; defaults to static/wsb/page.json."},
	{KeyParentID, TypeString, "Parent component id; fills relIn.id when relIn is omitted."},
	{KeyBeforeID, TypeString, "Insert the new component immediately before this top-level entry."},
	{KeyAfterID, TypeString, "Insert the new component immediately after this top-level entry."},
	{KeyResponseFormat, TypeString, "concise (id, kind, orderIndex, parentId, title) or detailed (full record)."},
	{KeyAutoPosition, TypeObject, "Automatic placement: {strategy, parent_id, gap_px, sibling_id}. Requires width and height."},
}

// componentFields is the closed set of component keys accepted on create.
var componentFields = []Field{
	// identity
	{"kind", TypeString, "Component kind (SECTION, TEXT, BUTTON, CONTAINER, IMAGE, ...)."},
	{"id", TypeString, "Optional explicit id; generated when omitted."},
	{"inTemplate", TypeBool, "True if the component belongs to the template."},
	{"orderIndex", TypeInt, "Sibling order index; recomputed automatically."},
	{"wrap", TypeBool, "Enable wrapping behavior for containers."},
	{"items", TypeArray, "Not allowed: the page is flat, use relIn to nest."},

	// geometry and relations
	{"left", TypeInt, "Absolute left position in pixels."},
	{"top", TypeInt, "Absolute top position in pixels."},
	{"right", TypeInt, "Absolute right position in pixels."},
	{"bottom", TypeInt, "Absolute bottom position in pixels."},
	{"width", TypeInt, "Width in pixels."},
	{"height", TypeInt, "Height in pixels."},
	{"relIn", TypeObject, "Parent reference {id, left, top, right, bottom}; null for SECTION."},
	{"relTo", TypeObject, "Sibling stacking {id, below}; below is the pixel gap."},
	{"relPage", TypeObject, "Page-level positioning relation."},
	{"relPara", TypeObject, "Paragraph-level positioning relation {index, offset}."},
	{"bbox", TypeObject, "Bounding box {bottom, left, right, top}."},

	// alignment
	{"horizontalAlignment", TypeString, "Horizontal alignment (left, center, right)."},
	{"verticalAlignment", TypeString, "Vertical alignment (top, center, bottom)."},
	{"horizontalAlign", TypeString, "Menu horizontal alignment."},
	{"verticalAlign", TypeString, "Menu vertical alignment."},

	// content
	{"content", TypeString, "HTML content for text components (plain HTML, no CDATA)."},
	{"text", TypeString, "Plain text content."},
	{"title", TypeString, "Title or label text."},
	{"name", TypeString, "Component name."},
	{"placeholder", TypeString | TypeObject, "Placeholder text for inputs."},
	{"placeholderText", TypeString, "Alternative placeholder text field."},
	{"paras", TypeArray, "Rich text paragraph descriptors."},
	{"links", TypeArray, "Rich text link descriptors."},
	{"globalStyleId", TypeString, "Global text style reference."},

	// typography
	{"font", TypeString | TypeInt, "Font family or font index."},
	{"fontFamily", TypeString, "Explicit font family name."},
	{"fontSize", TypeInt, "Font size in pixels."},
	{"bold", TypeBool, "Bold text."},
	{"italic", TypeBool, "Italic text."},
	{"underline", TypeBool, "Underlined text."},
	{"letterSpacing", TypeNumber, "Letter spacing."},
	{"lineHeight", TypeNumber, "Line height multiplier."},
	{"textStyle", TypeString | TypeObject, "Predefined text style identifier."},

	// colour and theme
	{"color", TypeString | TypeArray, "Text or foreground color."},
	{"background", TypeString | TypeObject, "Background color or gradient."},
	{"themeColor", TypeString, "Theme color identifier."},
	{"themeHighlightColor", TypeString, "Theme highlight color."},
	{"themeOverrideColor", TypeString, "Override theme color."},
	{"themeStyle", TypeString, "Theme style identifier."},
	{"themeStyles", TypeObject, "Theme styles for menus {mainMenu, submenu}."},
	{"themeColorType", TypeString, "Theme color type (LIGHT, DARK)."},
	{"themeShadowColor", TypeString | TypeArray, "Theme shadow color."},
	{"themeShadowBlurRadius", TypeNumber, "Shadow blur radius."},
	{"themeShadowOffsetX", TypeNumber, "Shadow horizontal offset."},
	{"themeShadowOffsetY", TypeNumber, "Shadow vertical offset."},
	{"selectedTheme", TypeString, "Selected theme name (Main, White, Dark, ...)."},
	{"selectedGradientTheme", TypeString, "Selected gradient theme name."},
	{"selectedBorderTheme", TypeString, "Selected border theme name."},
	{"colorType", TypeString, "Color type for theme adaptation (LIGHT, DARK)."},
	{"stretch", TypeBool, "Stretch to the full page width (SECTION)."},
	{"pin", TypeInt, "Pin position (0 for unpinned)."},

	// style
	{"style", TypeObject, "CSS-like style properties."},
	{"styles", TypeArray, "Style definitions; entries may be objects or raw fragments."},
	{"styleType", TypeString, "Style type identifier."},
	{"styleButton", TypeObject, "Form submit button style."},
	{"styleForm", TypeObject, "Form style {font, fontSize, fontColor}."},
	{"subStyle", TypeObject, "Secondary style block."},
	{"textStyleMeta", TypeObject, "Text style metadata."},
	{"imageStyle", TypeObject, "Image style."},
	{"captionStyle", TypeObject, "Caption style."},
	{"captionBoxStyle", TypeObject, "Caption box style."},
	{"captionTitleTextStyle", TypeObject, "Caption title text style."},
	{"captionDescriptionTextStyle", TypeObject, "Caption description text style."},
	{"opacity", TypeNumber, "Opacity (0-1)."},
	{"rotation", TypeNumber, "Rotation in degrees."},
	{"scale", TypeNumber, "Scale factor."},
	{"border", TypeObject, "Border properties."},
	{"corners", TypeObject, "Corner radius properties."},
	{"padding", TypeObject, "Padding properties."},
	{"buttonThemeSelected", TypeString, "Button theme (primary, secondary, ...)."},
	{"fuButtonThemeSelected", TypeString, "Form button theme."},

	// media
	{"image", TypeString, "Image URL or identifier."},
	{"asset", TypeString | TypeObject, "Asset identifier or asset record."},
	{"assetData", TypeObject, "Asset metadata."},
	{"cropLeft", TypeNumber, "Image crop left offset."},
	{"cropTop", TypeNumber, "Image crop top offset."},
	{"scaleStrategy", TypeString, "Image scaling strategy."},
	{"lightBoxEnabled", TypeBool, "Enable lightbox for images."},

	// links
	{"link", TypeString | TypeBool | TypeObject, "Link URL."},
	{"linkAction", TypeString | TypeObject, "Link action {link: {type, value}, openInNewWindow}."},
	{"linkId", TypeString, "Link target component id."},
	{"openInNewWindow", TypeBool, "Open link in a new window."},
	{"openLink", TypeString | TypeBool, "Link opening behavior."},

	// mobile
	{"mobileDown", TypeBool, "Push content down on mobile."},
	{"mobileHide", TypeBool, "Hide on mobile."},
	{"mobileSettings", TypeObject, "Mobile settings {align, font, size}."},
	{"mobileFontSize", TypeInt, "Font size on mobile."},
	{"mobileSize", TypeString | TypeInt, "Size configuration on mobile."},
	{"mobileHorizontalAlignment", TypeString, "Horizontal alignment on mobile."},

	// animation and interaction
	{"animated", TypeBool, "Enable animation."},
	{"animation", TypeString | TypeObject, "Animation type or configuration."},
	{"scrollEffect", TypeString, "Scroll-triggered effect."},
	{"hover", TypeObject, "Hover state properties."},
	{"onHover", TypeObject, "On-hover behavior."},
	{"press", TypeObject, "Press state properties."},

	// svg
	{"rawSvg", TypeString, "Raw SVG markup."},
	{"svgJson", TypeObject, "SVG structure as JSON."},
	{"viewBox", TypeString, "SVG viewBox attribute."},

	// forms
	{"formElements", TypeObject, "Form fields {name: {inputType, isRequired, errorMessage, name, values}}."},
	{"formElementsOrder", TypeArray, "Form field order."},
	{"recipientEmail", TypeString, "Form recipient e-mail."},
	{"subject", TypeString, "Form e-mail subject."},
	{"submitBtn", TypeString, "Submit button label."},
	{"successMessage", TypeString, "Message shown after submit."},
	{"isCaptchaEnabled", TypeBool, "Enable captcha."},
	{"captchaLang", TypeString, "Captcha language."},
	{"isMarketingConsentEnabled", TypeBool, "Show marketing consent checkbox."},
	{"marketingConsentCheckBoxText", TypeString, "Marketing consent text."},
	{"readPrivacyPolicyText", TypeString, "Privacy policy text."},

	// menus and header
	{"layoutType", TypeString, "Menu layout (e.g. HORIZONTAL_DROPDOWN)."},
	{"startLevel", TypeInt, "First menu level shown."},
	{"moreButtonEnabled", TypeBool, "Show a more button."},
	{"moreText", TypeString, "More button text."},
	{"isStickyToHeader", TypeBool, "Stick to the header."},
	{"logoHorizontalAlignment", TypeString, "Logo horizontal alignment."},
	{"logoTitleScale", TypeNumber, "Logo title scale."},
	{"generic", TypeObject, "Generic info block settings."},
	{"specific", TypeObject, "Specific info block settings."},

	// maps and address
	{"addressLocation", TypeObject, "Map location {lat, lng}."},
	{"addressText", TypeString, "Address text."},
	{"addressUrl", TypeString, "Address URL."},
	{"zoom", TypeNumber, "Map zoom level."},
	{"useOriginalColors", TypeBool, "Keep original SVG colors."},
	{"colors", TypeArray, "Color mappings [{fromColor, toColor, toThemeColor}]."},
	{"defaultFillColor", TypeString | TypeArray, "Default SVG fill color."},

	// misc
	{"hidden", TypeBool, "Hide the component."},
	{"show", TypeBool, "Show the component."},
	{"spacing", TypeNumber, "Spacing value."},
	{"size", TypeString | TypeInt, "Size configuration."},
	{"position", TypeString, "Position type."},
	{"repeat", TypeBool, "Repeat pattern."},
	{"gradient", TypeObject, "Gradient configuration."},
	{"seo", TypeObject, "SEO metadata."},
}

// Nested closed objects: key -> accepted sub-keys.
var nestedFields = map[string][]Field{
	"relIn": {
		{"id", TypeString, "Parent component id."},
		{"left", TypeInt, "Left offset from the parent's left edge."},
		{"top", TypeInt, "Top offset from the parent's top edge."},
		{"right", TypeInt, "Right offset from the parent's right edge (usually negative)."},
		{"bottom", TypeInt, "Bottom offset from the parent's bottom edge (usually negative)."},
	},
	"relTo": {
		{"id", TypeString, "Sibling component id."},
		{"below", TypeInt, "Pixel gap below the sibling."},
	},
	"relPara": {
		{"index", TypeInt, "Paragraph index."},
		{"offset", TypeInt, "Character offset within the paragraph."},
	},
	"mobileSettings": {
		{"align", TypeString, "Text alignment on mobile."},
		{"font", TypeInt, "Font size index on mobile."},
		{"size", TypeString, "Background size on mobile."},
	},
	KeyAutoPosition: {
		{"strategy", TypeString, "below_last_child, above_first_child, centered, fill_width or stack_below."},
		{"parent_id", TypeString, "Parent to place into; defaults to the last section created in the batch."},
		{"gap_px", TypeInt, "Gap in pixels (default 20)."},
		{"sibling_id", TypeString, "Sibling to stack below (stack_below only)."},
	},
}

var (
	createIndex = index(insertionFields, componentFields)
	editIndex   = editFields()
)

func index(groups ...[]Field) map[string]Field {
	m := make(map[string]Field)
	for _, g := range groups {
		for _, f := range g {
			m[f.Name] = f
		}
	}
	return m
}

// forbiddenOnEdit are insertion-time keys that cannot change after create.
var forbiddenOnEdit = []string{"id", KeyParentID, KeyBeforeID, KeyAfterID}

func editFields() map[string]Field {
	m := index(componentFields)
	for _, k := range forbiddenOnEdit {
		delete(m, k)
	}
	m["kind"] = Field{"kind", TypeString, "Optional; must match the target component's kind."}
	m[KeyComponentID] = Field{KeyComponentID, TypeString, "The component id to edit."}
	m[KeyFilePath] = Field{KeyFilePath, TypeString, "Page JSON path; defaults to static/wsb/page.json."}
	m[KeyResponseFormat] = Field{KeyResponseFormat, TypeString, "concise or detailed."}
	return m
}
