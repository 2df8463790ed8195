package domain

// TutorAnswerTemplate is the default answer prompt. The first %s receives
// the retrieved context and the second the student's question.
const TutorAnswerTemplate = `You are an expert AI tutor. Use the following context to answer the student's question in a clear, educational manner.

Context: %s

Question: %s

Answer: Provide a comprehensive, step-by-step explanation that helps the student understand the concept. Include examples when helpful and encourage critical thinking.`
