package imagegen

import "fmt"

// line-art attributes shared by every age group
const coreAttributes = "black and white smooth and clean lineart, high contrast, " +
	"crisp lines on white background, no grayscale, no shading, no color"

const qualityDetails = "professional quality, printable quality, coloring book style"

// wraps the user's subject in the coloring-page prompt template for the
// selected age group
func enhancePrompt(prompt string, ageGroup AgeGroup, model string) string {
	var body string

	switch ageGroup {
	case AgeToddler:
		body = fmt.Sprintf("%s of %s, designed with extra-large, simple shapes and thick outlines, "+
			"ensuring easy coloring for toddlers aged 1-3 years", coreAttributes, prompt)
	case AgePreschool:
		body = fmt.Sprintf("%s of %s, featuring bold outlines, minimal intricate details, "+
			"and engaging, recognizable elements, perfect for preschoolers aged 3-5 years", coreAttributes, prompt)
	case AgeSchool:
		body = fmt.Sprintf("%s of %s, with moderate details, clear and fun designs, "+
			"and interactive elements, ideal for kids aged 6-12 years to enjoy coloring", coreAttributes, prompt)
	case AgeTeen:
		body = fmt.Sprintf("%s of %s, featuring intricate patterns, detailed backgrounds, "+
			"and stylish elements, catering to the artistic preferences of teens aged 13-17 years", coreAttributes, prompt)
	case AgeAdult:
		body = fmt.Sprintf("%s of %s, designed with high-detail elements, intricate patterns, "+
			"and artistic compositions, providing a relaxing and immersive coloring experience for adults aged 18+", coreAttributes, prompt)
	default:
		body = fmt.Sprintf("%s of %s, with well-defined borders and easily colorable spaces", coreAttributes, prompt)
	}

	enhanced := fmt.Sprintf("%s, %s", body, qualityDetails)

	if model == "runware:flux-dev@1" {
		enhanced += ", professional line art illustration style"
	}

	return enhanced
}
