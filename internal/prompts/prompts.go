package prompts

// ============================================================================
// Media Analysis Prompts (Vision Model)
// ============================================================================

// ImageAnalysisPrompt is the fixed five-point analysis request for an
// uploaded promotional image.
const ImageAnalysisPrompt = `Analyze this promotional image. Describe:
1. What is shown in the image (activities, people, specific attractions)
2. The mood/tone of the image
3. What promotion or message it's trying to convey
4. Any text visible in the image
5. Target demographic (families, kids, teens, etc.)

Be concise but thorough.`

// ============================================================================
// Locale Research Prompts
// ============================================================================

// ResearchSystemPrompt defines the researcher role for locale research.
const ResearchSystemPrompt = `You are an expert local researcher.`

// ResearchUserPrompt is the insider local-knowledge request. It takes the
// city and state as format arguments.
const ResearchUserPrompt = `Research and provide comprehensive, "insider" information about %s, %s for creating authentic, localized social media content for a family adventure park location.

ACT LIKE A LOCAL. Dig deep beyond Wikipedia basics. I need:
1. **Deep Demographics**: Not just numbers, but the *vibe*. Is it old money, blue collar, young families, commuters?
2. **Hyper-Local Culture**: Specific neighborhoods, local rivalries, inside jokes, slang, or "if you know you know" references.
3. **Hidden Gems & Habits**: Where do locals *actually* go? What are the specific weekend rituals?
4. **Specific Events**: Not just "Summer Festival", but named parades or specific high school football rivalries.
5. **Economic Reality**: What's the actual economic mood?
6. **Voice & Tone**: How do locals speak? (e.g., regional dialect markers).
7. **Community Priorities**: What are the hot topics or shared values right now?

GOAL: The content must feel like it was written by a 28-35 year old resident, not a tourist or an AI. Be specific, gritty if needed, and authentic.`

// AddressExtractionPrompt asks for a strict "City, ST" reply for an
// address the regex strategies could not parse. Takes the address as a
// format argument.
const AddressExtractionPrompt = `Extract the city name and state from this address, return ONLY in this exact format: "City, ST" where ST is the 2-letter state code. Address: %s`

// ============================================================================
// Caption Generation Prompts
// ============================================================================

// CaptionSystemPrompt defines the copywriter role for caption generation.
const CaptionSystemPrompt = `You are an expert social media copywriter who specializes in creating authentic, localized content that resonates with specific communities.`

// RegenerateSystemPrompt defines the copywriter role for regeneration.
const RegenerateSystemPrompt = `You are an expert social media copywriter creating alternative versions of localized content.`

// ============================================================================
// Quality Scoring Prompt
// ============================================================================

// ScoringPrompt requests a strict-JSON multi-dimension caption score.
// Format arguments: caption, goal, location, truncated media analysis,
// location again, goal again.
const ScoringPrompt = `You are a quality control expert for a family adventure park reviewing a social media caption.

**CAPTION TO REVIEW:**
"%s"

**CONTEXT:**
- Goal: %s
- Location: %s
- Image/Video Content: %s

**SCORE THIS CAPTION ON:**

1. **Brand Consistency (0-100)**: Does it match the brand's energetic, family-friendly, community-focused voice? Avoids generic template language?

2. **Local Relevance (0-100)**: Does it feel authentic to %s? Uses local references appropriately?

3. **Goal Alignment (0-100)**: Does it accomplish the stated goal: "%s"?

4. **Overall Quality (0-100)**: Grammar, clarity, engagement, call-to-action effectiveness

5. **Issues**: List any problems (max 3 bullet points)

6. **Strengths**: What works well (max 3 bullet points)

Return ONLY valid JSON in this exact format:
{
  "brand_consistency": 85,
  "local_relevance": 90,
  "goal_alignment": 95,
  "overall_quality": 88,
  "overall_score": 89,
  "issues": ["Issue 1", "Issue 2"],
  "strengths": ["Strength 1", "Strength 2"],
  "recommendation": "Approve" or "Revise" or "Reject"
}`
