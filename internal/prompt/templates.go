package prompt

// Variable names shared by the built-in templates.
const (
	VarText         = "Text"
	VarFigureNumber = "FigureNumber"
	VarAnswer       = "Answer"
	VarQuestion     = "Question"
)

var FigureInfo = MustNew("figure_info", `
I have to present a figure to my class. Explain to me in detail what figure {{.FigureNumber}} is about. Be meticulous and detailed and logical.

Text: {{.Text}}

Analyze the figure and provide a detailed explanation.`)

var FigureCount = MustNew("figure_count", `
Analyze the following academic paper text and count the total number of figures in the paper.

Text: {{.Text}}

=> Count the total number of figures (hint look for the last figure number) and respond with just the number.`)

var FigureConnection = MustNew("figure_connection", `
Analyze the following academic paper text and explain in detail how the results are illustrated by figure {{.FigureNumber}}.
Be very detailed and logical. Think big picture and small details. Connect key information back to the background.

Text: {{.Text}}

Explain in detail how the results are illustrated by figure {{.FigureNumber}}.`)

var ExpandAnswer = MustNew("expand_answer", `
Given this answer:
{{.Answer}}

Can you expand it and provide more details based on this original text:
{{.Text}}

Please provide a more detailed and comprehensive explanation. Do not miss any details.`)

var ExtractDetails = MustNew("extract_details", `
Extract the details from the following text:
{{.Text}}
`)

var Background = MustNew("background", `
Extract and summarize the background information from the following text in a detailed and organized manner:

{{.Text}}

1. **Detailed Background Explanation:**
   - Summarize the background with a focus on the essential theories, frameworks, and context needed to understand the work.
   - Highlight any historical or research context that influenced the current study.
   - Explain key findings from prior research, identifying any knowledge gaps the paper addresses.

2. **Prerequisite Knowledge:**
   - List and briefly explain any prerequisite concepts, theories, or technical terminology needed to fully understand the background and findings.
   - For each prerequisite, include a brief description or definition to ensure clarity.

3. **Key Topics and Keywords:**
   - Identify important keywords that are crucial for understanding the content of the paper.
   - For each keyword, provide a brief explanation if needed, focusing on terms central to the topic, methodology, and domain of the research.

=> Respond only with the requested information above. Ensure clarity, precision, and completeness to facilitate comprehensive understanding.
`)

var CustomQuery = MustNew("custom_query", `
Answer the following question about the academic paper below. Base the answer on the paper text and say so when the paper does not cover it.

Question: {{.Question}}

Text: {{.Text}}`)
