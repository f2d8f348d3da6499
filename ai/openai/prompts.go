package openai

import "fmt"

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "profile": {
      "type": "object",
      "properties": {
        "name": {"type": ["string", "null"]},
        "email": {"type": ["string", "null"]},
        "phone": {"type": ["string", "null"]},
        "address": {"type": ["string", "null"]},
        "institution": {"type": ["string", "null"]},
        "website": {"type": ["string", "null"]}
      },
      "additionalProperties": false
    },
    "categories": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "entries": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "title": {"type": "string"},
                "description": {"type": ["string", "null"]},
                "date": {"type": ["string", "null"]},
                "location": {"type": ["string", "null"]},
                "url": {"type": ["string", "null"]}
              },
              "required": ["title"],
              "additionalProperties": false
            }
          }
        },
        "required": ["name", "entries"],
        "additionalProperties": false
      }
    }
  },
  "required": ["profile", "categories"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `You are given a fragment of a CV or resume. Extract the person's profile
fields and every dated or listed item, grouped under the section the item
belongs to, and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- The fragment may start or end mid-section; extract what is visible, never invent missing context.
- Category names are the section headings as written in the text ("Publications", "Education", ...).
  If items appear before any heading, group them under a sensible name.
- Every item becomes one entry. The title is required; keep it close to the original wording.
- Dates stay as written in the text ("2019", "May 2021", "2020-2023"); do not reformat them.
- Use null for profile fields and entry fields that are not present. Do not guess email addresses,
  phone numbers or dates.
- Only report profile fields for the document's owner, not for coauthors or references.
- If the fragment contains nothing extractable, return {"profile": {}, "categories": []}.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input:
"EDUCATION
PhD in Molecular Biology, University of Helsinki, 2014

PUBLICATIONS
Smith J, Doe A. Gene regulation in yeast. J Cell Biol. 2016."
Output:
{
  "profile": {},
  "categories": [
    {"name": "EDUCATION", "entries": [
      {"title": "PhD in Molecular Biology", "description": null, "date": "2014", "location": "University of Helsinki", "url": null}
    ]},
    {"name": "PUBLICATIONS", "entries": [
      {"title": "Gene regulation in yeast", "description": "Smith J, Doe A. J Cell Biol.", "date": "2016", "location": null, "url": null}
    ]}
  ]
}`

// buildSystemPrompt creates the system prompt with the response schema embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate, extractionResponseSchema)
}
