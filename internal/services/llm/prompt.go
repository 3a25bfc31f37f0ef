package llm

// summaryPromptTemplate captures the instructions sent with every
// summarization request. Keep updates centralized here so the sections
// are easy to tweak without hunting through call sites. Placeholders:
// title, arXiv id, PDF URL, extracted text.
const summaryPromptTemplate = `Please provide a comprehensive, evidence-based summary of the following academic paper based on the provided text.
Title: %s
arXiv ID: %s
PDF URL: %s

Paper Content:
%s

Please analyze the text provided and structure your summary using the following specific sections:
1. **Overview**: A concise description of the paper's core mission, what it introduces (e.g., specific benchmarks, datasets, or models), and its primary goal.
2. **Key Results**: Detailed quantitative findings. Do not be vague. Extract specific metrics, leaderboard rankings, scores (e.g., "Model X scored 56.1%%"), and domain-specific performance comparisons.
3. **Methodology**: Explain the specific approach used. Detail the dataset composition (e.g., number of test cases, expert sources) and the evaluation/grading process (e.g., "hurdle criteria," "grounding checks," or specific algorithms).
4. **Critical Insights**: Discuss the nuances, limitations, or specific behaviors observed in the study. Look for failure modes (e.g., hallucinations), performance gaps between domains, or qualitative observations made by the authors.

**Constraint:** Do not hallucinate. Base the summary *strictly* on the provided text context.`
