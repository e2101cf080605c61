package domain

// Round1Questions is the "who is most likely to" pool for the head-to-head
// voting round.
var Round1Questions = []string{
	"Who is most likely to survive a zombie apocalypse?",
	"Who is most likely to become famous overnight?",
	"Who is most likely to forget their own birthday?",
	"Who is most likely to win a hot dog eating contest?",
	"Who is most likely to befriend a wild raccoon?",
	"Who is most likely to get lost in their own neighborhood?",
	"Who is most likely to laugh at a funeral?",
	"Who is most likely to start a conspiracy theory?",
	"Who is most likely to sleep through an earthquake?",
	"Who is most likely to become a game show host?",
	"Who is most likely to cry during a commercial?",
	"Who is most likely to adopt ten cats?",
	"Who is most likely to accidentally join a cult?",
	"Who is most likely to win an argument with a toddler?",
	"Who is most likely to eat dessert before dinner?",
	"Who is most likely to trip on a flat surface?",
	"Who is most likely to talk their way out of a ticket?",
	"Who is most likely to become a professional napper?",
	"Who is most likely to text the wrong group chat?",
	"Who is most likely to haunt this place as a ghost?",
	"Who is most likely to invent something useless but popular?",
	"Who is most likely to get banned from a library?",
	"Who is most likely to marry a celebrity?",
	"Who is most likely to spend their savings on snacks?",
	"Who is most likely to forget where they parked?",
	"Who is most likely to win a karaoke competition?",
	"Who is most likely to believe the moon landing was faked?",
	"Who is most likely to wrestle a goose and lose?",
	"Who is most likely to become a small-town legend?",
	"Who is most likely to break a world record by accident?",
}

// Round2Prompts is the hot-seat pool: dares and questions the current
// player acts on before passing the turn.
var Round2Prompts = []string{
	"Do your best impression of another player.",
	"Speak in an accent until your next turn.",
	"Tell the group your most embarrassing moment.",
	"Sing the chorus of the last song you listened to.",
	"Let the group scroll your camera roll for ten seconds.",
	"Describe your dream vacation in exactly five words.",
	"Do twenty jumping jacks right now.",
	"Share an unpopular opinion you actually hold.",
	"Compliment every player in the room.",
	"Reveal the last thing you searched online.",
	"Talk for thirty seconds about cheese without stopping.",
	"Show the group your best dance move.",
	"Tell a joke. If nobody laughs, tell another.",
	"Name three things you would grab in a fire.",
	"Trade seats with the player across from you.",
	"Describe another player using only animal comparisons.",
	"Share the weirdest food combination you enjoy.",
	"Act out your morning routine in fast forward.",
	"Say the alphabet backwards as fast as you can.",
	"Tell the group a secret talent you have.",
	"Let the player to your left give you a new nickname.",
	"Narrate the room like a nature documentary.",
	"Share your hottest take about breakfast food.",
	"Stand up and give a dramatic one-line movie speech.",
}

// Round3Prompts is the fill-in-the-blank pool for the writing round. Each
// prompt is deliberately open-ended so two answers to the same prompt make
// a fair head-to-head.
var Round3Prompts = []string{
	"The worst possible name for a cruise ship: ______",
	"A rejected flavor of sparkling water: ______",
	"The real reason the dinosaurs went extinct: ______",
	"Something you should never say at a job interview: ______",
	"The title of the world's least popular self-help book: ______",
	"A terrible theme for a birthday party: ______",
	"The next big fitness trend: ______",
	"Something found at the bottom of every junk drawer: ______",
	"A rejected superhero power: ______",
	"The worst thing to whisper during a handshake: ______",
	"A surprising item to find in a time capsule: ______",
	"The secret ingredient in grandma's famous recipe: ______",
	"A bad slogan for a dentist's office: ______",
	"What aliens would take back as a souvenir from Earth: ______",
	"The least inspiring motivational poster: ______",
	"A terrible name for a pet goldfish: ______",
	"Something you should never microwave: ______",
	"The most disappointing theme park ride: ______",
	"A rejected Olympic sport: ______",
	"The worst possible fortune cookie message: ______",
	"Something a robot would say to blend in with humans: ______",
	"A strange thing to collect: ______",
	"The worst opening line for a wedding toast: ______",
	"A terrible prize for winning a game show: ______",
	"What cats are actually thinking about: ______",
	"The worst thing to bring to a potluck: ______",
	"A rejected crayon color name: ______",
	"Something you would find in a wizard's refrigerator: ______",
	"The least useful smartphone app: ______",
	"A bad name for a rollercoaster: ______",
	"The real reason traffic exists: ______",
	"Something you should never google: ______",
	"The worst superpower to have at a funeral: ______",
	"A suspicious thing to say right before a magic trick: ______",
	"What the moon smells like: ______",
	"The worst possible campaign slogan: ______",
}
