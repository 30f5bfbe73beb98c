package taxonomy

var defaultCategories = []Category{
	{Name: "python", Terms: []string{"python", "django", "fastapi", "pytorch", "tensorflow", "pandas", "numpy"}},
	{Name: "javascript", Terms: []string{"javascript", "js", "node.js", "react", "vue", "angular", "typescript", "frontend"}},
	{Name: "web", Terms: []string{"web", "frontend", "backend", "fullstack", "html", "css", "web development", "flask"}},
	{Name: "mobile", Terms: []string{"mobile", "ios", "android", "react native", "flutter", "app development"}},
	{Name: "ai", Terms: []string{"ai", "artificial intelligence", "machine learning", "ml", "deep learning"}},
	{Name: "nlp", Terms: []string{"nlp", "natural language processing", "text mining", "language models"}},
	{Name: "data", Terms: []string{"data science", "data analysis", "big data", "data visualization", "analytics"}},
	{Name: "cloud", Terms: []string{"aws", "azure", "gcp", "cloud computing", "serverless", "cloud"}},
	{Name: "devops", Terms: []string{"devops", "docker", "kubernetes", "ci/cd", "jenkins", "deployment"}},
	{Name: "blockchain", Terms: []string{"blockchain", "web3", "smart contracts", "cryptocurrency", "crypto"}},
	{Name: "security", Terms: []string{"cybersecurity", "security", "encryption", "authentication", "privacy"}},
	{Name: "game", Terms: []string{"game development", "unity", "unreal", "gaming", "game design"}},
	{Name: "ar/vr", Terms: []string{"augmented reality", "virtual reality", "ar", "vr", "mixed reality"}},
	{Name: "iot", Terms: []string{"internet of things", "iot", "embedded systems", "hardware"}},
	{Name: "ui/ux", Terms: []string{"ui design", "ux design", "user interface", "user experience", "design"}},
	{Name: "database", Terms: []string{"sql", "mongodb", "postgresql", "mysql", "database", "nosql"}},
}
