package docqa

const summarySystemPrompt = `You are an assistant that answers ONLY from the provided document content. ` +
	`If the requested information is not in the document, reply exactly: "` + NotFound + `" ` +
	`Do not ask follow-up questions and do not add outside information.`

// summaryUserPrompt takes the file name and the document text.
const summaryUserPrompt = `Provide an ultra-concise summary (2-3 sentences max) of the main points below. ` +
	`Use only the document content.

Document: %s

Content:
%s

Return the summary as plain text.`

const chatSystemPrompt = `You are an assistant that answers ONLY from the provided document content. ` +
	`If the requested information is not in the document, reply exactly: "` + NotFound + `" ` +
	`Answer in 1-2 sentences. Do not ask follow-up questions and do not add outside information.`

// chatUserPrompt takes the file name, the document text and the question.
const chatUserPrompt = `Based only on the content below, answer the user's question in one or two sentences. ` +
	`If the answer is not in the document, reply exactly: "` + NotFound + `"

Document: %s

Content:
%s

User Question: %s

Give a short, direct answer.`
